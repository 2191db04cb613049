package domain

import "time"

// RecordState is the lifecycle state of a consumption record.
type RecordState string

const (
	RecordStatePending RecordState = "pending"
	RecordStateSuccess RecordState = "success"
	RecordStateFailed  RecordState = "failed"
)

// EarningStatus is the outcome of a developer reward event.
type EarningStatus string

const (
	EarningStatusSettled EarningStatus = "settled"
	EarningStatusFailed  EarningStatus = "failed"
)

// ForkMode describes how a marketplace agent may be modified by whoever forks it.
type ForkMode string

const (
	ForkModeEditable ForkMode = "editable"
	ForkModeLocked   ForkMode = "locked"
)

// ConsumptionRecord is one billable event. Amounts are whole credits.
type ConsumptionRecord struct {
	ID           string      `json:"id"                      gorm:"primaryKey;type:varchar(64)"`
	UserID       string      `json:"user_id"                 gorm:"type:varchar(64);not null;index"`
	Amount       int64       `json:"amount"                  gorm:"not null;default:0"`
	State        RecordState `json:"state"                   gorm:"type:varchar(16);not null;index"`
	SessionID    string      `json:"session_id,omitempty"    gorm:"type:varchar(64)"`
	TopicID      string      `json:"topic_id,omitempty"      gorm:"type:varchar(64)"`
	MessageID    string      `json:"message_id,omitempty"    gorm:"type:varchar(64)"`
	Model        string      `json:"model,omitempty"         gorm:"type:varchar(128)"`
	Tier         Tier        `json:"tier,omitempty"          gorm:"type:varchar(16)"`
	InputTokens  int64       `json:"input_tokens,omitempty"  gorm:"not null;default:0"`
	OutputTokens int64       `json:"output_tokens,omitempty" gorm:"not null;default:0"`
	TotalTokens  int64       `json:"total_tokens,omitempty"  gorm:"not null;default:0"`
	ToolCosts    int64       `json:"tool_costs,omitempty"    gorm:"not null;default:0"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// TableName sets the database table name.
func (ConsumptionRecord) TableName() string { return "consumption_records" }

// Wallet is a user's credit balance.
//
// VirtualBalance is the only spendable balance: settlements check and debit it alone.
// PurchasedBalance, GrantedBalance and EarnedBalance are credit-only lifetime totals
// per funding source and are never debited, so they do not sum to VirtualBalance
// once anything has been consumed. TotalCredited and TotalConsumed reconcile it:
// VirtualBalance == TotalCredited - TotalConsumed.
type Wallet struct {
	UserID           string    `json:"user_id"           gorm:"primaryKey;type:varchar(64)"`
	PurchasedBalance int64     `json:"purchased_balance" gorm:"not null;default:0"`
	GrantedBalance   int64     `json:"granted_balance"   gorm:"not null;default:0"`
	EarnedBalance    int64     `json:"earned_balance"    gorm:"not null;default:0"`
	VirtualBalance   int64     `json:"virtual_balance"   gorm:"not null;default:0"`
	TotalCredited    int64     `json:"total_credited"    gorm:"not null;default:0"`
	TotalConsumed    int64     `json:"total_consumed"    gorm:"not null;default:0"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// TableName sets the database table name.
func (Wallet) TableName() string { return "wallets" }

// UserConsumeSummary is the denormalized rolling consumption aggregate for a user.
type UserConsumeSummary struct {
	UserID       string    `json:"user_id"       gorm:"primaryKey;type:varchar(64)"`
	Provider     string    `json:"provider"      gorm:"primaryKey;type:varchar(64)"`
	TotalAmount  int64     `json:"total_amount"  gorm:"not null;default:0"`
	TotalCount   int64     `json:"total_count"   gorm:"not null;default:0"`
	SuccessCount int64     `json:"success_count" gorm:"not null;default:0"`
	FailedCount  int64     `json:"failed_count"  gorm:"not null;default:0"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName sets the database table name.
func (UserConsumeSummary) TableName() string { return "user_consume_summaries" }

// DeveloperEarning is one revenue-share reward event. Immutable once written.
type DeveloperEarning struct {
	ID            string        `json:"id"                       gorm:"primaryKey;type:varchar(64)"`
	DeveloperID   string        `json:"developer_id"             gorm:"type:varchar(64);not null;index"`
	MarketplaceID string        `json:"marketplace_id"           gorm:"type:varchar(64);not null;index"`
	ConsumerID    string        `json:"consumer_id"              gorm:"type:varchar(64);not null"`
	ForkMode      ForkMode      `json:"fork_mode"                gorm:"type:varchar(16);not null"`
	Rate          float64       `json:"rate"                     gorm:"not null"`
	Amount        int64         `json:"amount"                   gorm:"not null"`
	TotalConsumed int64         `json:"total_consumed"           gorm:"not null"`
	Status        EarningStatus `json:"status"                   gorm:"type:varchar(16);not null"`
	SessionID     string        `json:"session_id,omitempty"     gorm:"type:varchar(64)"`
	TopicID       string        `json:"topic_id,omitempty"       gorm:"type:varchar(64)"`
	MessageID     string        `json:"message_id,omitempty"     gorm:"type:varchar(64)"`
	FailureReason string        `json:"failure_reason,omitempty" gorm:"type:text"`
	CreatedAt     time.Time     `json:"created_at"`
}

// TableName sets the database table name.
func (DeveloperEarning) TableName() string { return "developer_earnings" }

// DeveloperWallet tracks a developer's revenue-share balance.
type DeveloperWallet struct {
	DeveloperID      string    `json:"developer_id"      gorm:"primaryKey;type:varchar(64)"`
	AvailableBalance int64     `json:"available_balance" gorm:"not null;default:0"`
	TotalEarned      int64     `json:"total_earned"      gorm:"not null;default:0"`
	TotalWithdrawn   int64     `json:"total_withdrawn"   gorm:"not null;default:0"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// TableName sets the database table name.
func (DeveloperWallet) TableName() string { return "developer_wallets" }

// MarketplaceListing is a published agent. An empty OwnerID marks an official agent.
type MarketplaceListing struct {
	ID        string    `json:"id"         gorm:"primaryKey;type:varchar(64)"`
	OwnerID   string    `json:"owner_id"   gorm:"type:varchar(64)"`
	Published bool      `json:"published"  gorm:"not null;default:false"`
	ForkMode  ForkMode  `json:"fork_mode"  gorm:"type:varchar(16)"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName sets the database table name.
func (MarketplaceListing) TableName() string { return "marketplace_listings" }

// IsOfficial reports whether the listing is a first-party agent with no owning developer.
func (l *MarketplaceListing) IsOfficial() bool {
	return l.OwnerID == ""
}
