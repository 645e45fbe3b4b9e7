package core

import (
	"context"
	"strconv"
)

// DefaultLowStockThreshold is the unit count applied when a rule is created
// without an explicit threshold.
const DefaultLowStockThreshold = 5

// UpdateRuleInput carries the mutable rule fields. Nil pointers leave the
// field unchanged.
type UpdateRuleInput struct {
	Threshold *int
	Enabled   *bool
}

// RuleService is the notification rule registry: CRUD over per-merchant,
// per-product low-stock rules. Rule IDs increase monotonically with creation
// order; duplicate product names are tolerated and the lowest ID wins at
// evaluation time.
type RuleService interface {
	ListRules(ctx context.Context, merchantID string) ([]NotificationRule, error)
	// CreateRule validates before any state change: threshold must be a
	// non-negative integer and productName non-empty, else *ValidationError.
	CreateRule(ctx context.Context, merchantID, productName string, threshold int, enabled bool, units string) (*NotificationRule, error)
	// UpdateRule mutates threshold and/or enabled on one rule atomically.
	// Missing ID fails with *NotFoundError.
	UpdateRule(ctx context.Context, id int64, in UpdateRuleInput) (*NotificationRule, error)
	// DeleteRule removes a rule. Missing ID fails with *NotFoundError.
	DeleteRule(ctx context.Context, id int64) error
}

type ruleService struct {
	store DataFacade
	rules RuleStore
	locks *keyedMutex
}

// NewRuleService constructs a RuleService over the given stores.
func NewRuleService(store DataFacade, rules RuleStore) RuleService {
	return &ruleService{store: store, rules: rules, locks: newKeyedMutex()}
}

func (s *ruleService) ListRules(ctx context.Context, merchantID string) ([]NotificationRule, error) {
	return s.store.GetNotificationRules(ctx, merchantID)
}

func (s *ruleService) CreateRule(ctx context.Context, merchantID, productName string, threshold int, enabled bool, units string) (*NotificationRule, error) {
	if threshold < 0 {
		return nil, &ValidationError{Field: "threshold", Reason: "must be a non-negative integer"}
	}
	if productName == "" {
		return nil, &ValidationError{Field: "productName", Reason: "must not be empty"}
	}

	rule := NotificationRule{
		MerchantID:  merchantID,
		ProductName: productName,
		Threshold:   threshold,
		Enabled:     enabled,
		Units:       units,
	}
	id, err := s.rules.InsertRule(ctx, rule)
	if err != nil {
		return nil, err
	}
	rule.ID = id
	return &rule, nil
}

func (s *ruleService) UpdateRule(ctx context.Context, id int64, in UpdateRuleInput) (*NotificationRule, error) {
	if in.Threshold != nil && *in.Threshold < 0 {
		return nil, &ValidationError{Field: "threshold", Reason: "must be a non-negative integer"}
	}

	defer s.locks.lock(ruleKey(id)).Unlock()

	if err := s.rules.UpdateRule(ctx, id, in.Threshold, in.Enabled); err != nil {
		return nil, err
	}
	return s.rules.GetRule(ctx, id)
}

func (s *ruleService) DeleteRule(ctx context.Context, id int64) error {
	defer s.locks.lock(ruleKey(id)).Unlock()
	return s.rules.DeleteRule(ctx, id)
}

func ruleKey(id int64) string {
	return strconv.FormatInt(id, 10)
}
