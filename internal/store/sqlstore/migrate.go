package sqlstore

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/davidbz/howl/internal/domain"
)

// Migrate creates or updates the ledger tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&domain.Wallet{},
		&domain.ConsumptionRecord{},
		&domain.UserConsumeSummary{},
		&domain.MarketplaceListing{},
		&domain.DeveloperWallet{},
		&domain.DeveloperEarning{},
	); err != nil {
		return fmt.Errorf("failed to migrate ledger schema: %w", err)
	}

	return nil
}
