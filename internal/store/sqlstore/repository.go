package sqlstore

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/davidbz/howl/internal/domain"
)

// repository implements domain.LedgerRepository over a gorm handle, which is
// either the root connection pool or an open transaction.
type repository struct {
	db *gorm.DB
}

func newRepository(db *gorm.DB) *repository {
	return &repository{db: db}
}

func persistenceErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", domain.ErrPersistence, op, err)
}

func (r *repository) GetWallet(ctx context.Context, userID string) (*domain.Wallet, error) {
	var wallet domain.Wallet
	err := r.db.WithContext(ctx).Raw(
		`SELECT user_id, purchased_balance, granted_balance, earned_balance, virtual_balance,
			total_credited, total_consumed, created_at, updated_at
		FROM wallets
		WHERE user_id = ?`,
		userID,
	).Scan(&wallet).Error
	if err != nil {
		return nil, persistenceErr("get wallet", err)
	}
	if wallet.UserID == "" {
		return nil, nil
	}

	return &wallet, nil
}

func (r *repository) Deduct(ctx context.Context, userID string, amount int64) (bool, error) {
	res := r.db.WithContext(ctx).Exec(
		`UPDATE wallets
		SET virtual_balance = virtual_balance - ?,
			total_consumed = total_consumed + ?,
			updated_at = ?
		WHERE user_id = ? AND virtual_balance >= ?`,
		amount,
		amount,
		time.Now().UTC(),
		userID,
		amount,
	)
	if res.Error != nil {
		return false, persistenceErr("deduct balance", res.Error)
	}

	return res.RowsAffected == 1, nil
}

func (r *repository) CreditWallet(ctx context.Context, userID string, amount int64) error {
	now := time.Now().UTC()
	err := r.db.WithContext(ctx).Exec(
		`INSERT INTO wallets (
			user_id, purchased_balance, granted_balance, earned_balance, virtual_balance,
			total_credited, total_consumed, created_at, updated_at
		) VALUES (?, 0, ?, 0, ?, ?, 0, ?, ?)
		ON CONFLICT (user_id)
		DO UPDATE SET granted_balance = wallets.granted_balance + EXCLUDED.granted_balance,
			virtual_balance = wallets.virtual_balance + EXCLUDED.virtual_balance,
			total_credited = wallets.total_credited + EXCLUDED.total_credited,
			updated_at = EXCLUDED.updated_at`,
		userID,
		amount,
		amount,
		amount,
		now,
		now,
	).Error
	if err != nil {
		return persistenceErr("credit wallet", err)
	}

	return nil
}

func (r *repository) BulkUpdateRecordState(
	ctx context.Context,
	ids []string,
	state domain.RecordState,
) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	res := r.db.WithContext(ctx).Exec(
		`UPDATE consumption_records
		SET state = ?, updated_at = ?
		WHERE id IN ? AND state = ?`,
		state,
		time.Now().UTC(),
		ids,
		domain.RecordStatePending,
	)
	if res.Error != nil {
		return 0, persistenceErr("update record state", res.Error)
	}

	return res.RowsAffected, nil
}

func (r *repository) IncrementSummary(
	ctx context.Context,
	userID, provider string,
	amount int64,
	state domain.RecordState,
) error {
	var success, failed int64
	if state == domain.RecordStateSuccess {
		success = 1
	} else {
		failed = 1
	}

	err := r.db.WithContext(ctx).Exec(
		`INSERT INTO user_consume_summaries (
			user_id, provider, total_amount, total_count, success_count, failed_count, updated_at
		) VALUES (?, ?, ?, 1, ?, ?, ?)
		ON CONFLICT (user_id, provider)
		DO UPDATE SET total_amount = user_consume_summaries.total_amount + EXCLUDED.total_amount,
			total_count = user_consume_summaries.total_count + 1,
			success_count = user_consume_summaries.success_count + EXCLUDED.success_count,
			failed_count = user_consume_summaries.failed_count + EXCLUDED.failed_count,
			updated_at = EXCLUDED.updated_at`,
		userID,
		provider,
		amount,
		success,
		failed,
		time.Now().UTC(),
	).Error
	if err != nil {
		return persistenceErr("increment summary", err)
	}

	return nil
}

func (r *repository) GetMarketplaceListing(ctx context.Context, id string) (*domain.MarketplaceListing, error) {
	var listing domain.MarketplaceListing
	err := r.db.WithContext(ctx).Raw(
		`SELECT id, owner_id, published, fork_mode, created_at, updated_at
		FROM marketplace_listings
		WHERE id = ?`,
		id,
	).Scan(&listing).Error
	if err != nil {
		return nil, persistenceErr("get marketplace listing", err)
	}
	if listing.ID == "" {
		return nil, nil
	}

	return &listing, nil
}

func (r *repository) UpsertMarketplaceListing(ctx context.Context, listing *domain.MarketplaceListing) error {
	now := time.Now().UTC()
	err := r.db.WithContext(ctx).Exec(
		`INSERT INTO marketplace_listings (id, owner_id, published, fork_mode, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (id)
		DO UPDATE SET owner_id = EXCLUDED.owner_id,
			published = EXCLUDED.published,
			fork_mode = EXCLUDED.fork_mode,
			updated_at = EXCLUDED.updated_at`,
		listing.ID,
		listing.OwnerID,
		listing.Published,
		listing.ForkMode,
		now,
		now,
	).Error
	if err != nil {
		return persistenceErr("upsert marketplace listing", err)
	}

	return nil
}

func (r *repository) CreditDeveloperWallet(ctx context.Context, developerID string, amount int64) error {
	now := time.Now().UTC()
	err := r.db.WithContext(ctx).Exec(
		`INSERT INTO developer_wallets (
			developer_id, available_balance, total_earned, total_withdrawn, created_at, updated_at
		) VALUES (?, ?, ?, 0, ?, ?)
		ON CONFLICT (developer_id)
		DO UPDATE SET available_balance = developer_wallets.available_balance + EXCLUDED.available_balance,
			total_earned = developer_wallets.total_earned + EXCLUDED.total_earned,
			updated_at = EXCLUDED.updated_at`,
		developerID,
		amount,
		amount,
		now,
		now,
	).Error
	if err != nil {
		return persistenceErr("credit developer wallet", err)
	}

	return nil
}

func (r *repository) CreateDeveloperEarning(ctx context.Context, earning *domain.DeveloperEarning) error {
	if err := r.db.WithContext(ctx).Create(earning).Error; err != nil {
		return persistenceErr("create developer earning", err)
	}
	return nil
}

func (r *repository) CreateConsumptionRecords(ctx context.Context, records []*domain.ConsumptionRecord) error {
	if len(records) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(&records).Error; err != nil {
		return persistenceErr("create consumption records", err)
	}
	return nil
}

func (r *repository) GetConsumptionRecords(ctx context.Context, ids []string) ([]domain.ConsumptionRecord, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var records []domain.ConsumptionRecord
	err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Order("created_at ASC").
		Find(&records).Error
	if err != nil {
		return nil, persistenceErr("get consumption records", err)
	}

	return records, nil
}

func (r *repository) GetSummary(ctx context.Context, userID, provider string) (*domain.UserConsumeSummary, error) {
	var summary domain.UserConsumeSummary
	err := r.db.WithContext(ctx).Raw(
		`SELECT user_id, provider, total_amount, total_count, success_count, failed_count, updated_at
		FROM user_consume_summaries
		WHERE user_id = ? AND provider = ?`,
		userID,
		provider,
	).Scan(&summary).Error
	if err != nil {
		return nil, persistenceErr("get summary", err)
	}
	if summary.UserID == "" {
		return nil, nil
	}

	return &summary, nil
}

func (r *repository) GetDeveloperWallet(ctx context.Context, developerID string) (*domain.DeveloperWallet, error) {
	var wallet domain.DeveloperWallet
	err := r.db.WithContext(ctx).Raw(
		`SELECT developer_id, available_balance, total_earned, total_withdrawn, created_at, updated_at
		FROM developer_wallets
		WHERE developer_id = ?`,
		developerID,
	).Scan(&wallet).Error
	if err != nil {
		return nil, persistenceErr("get developer wallet", err)
	}
	if wallet.DeveloperID == "" {
		return nil, nil
	}

	return &wallet, nil
}
