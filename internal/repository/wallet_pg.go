package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/lucidplay/crashgate/internal/model"
	"github.com/lucidplay/crashgate/internal/service"
)

// WalletAccount is the durable balance row.
type WalletAccount struct {
	UserID  string          `gorm:"primaryKey;column:user_id"`
	Balance decimal.Decimal `gorm:"type:numeric(14,2)"`
}

func (WalletAccount) TableName() string { return "wallet_accounts" }

// GormLedger is the Postgres wallet ledger. Debits and credits run inside
// a row-locked transaction so each operation is atomic at the store.
type GormLedger struct {
	db       *gorm.DB
	starting decimal.Decimal
}

func NewGormLedger(dsn string, startingBalance decimal.Decimal) (*GormLedger, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open wallet db: %w", err)
	}
	if err := db.AutoMigrate(&WalletAccount{}); err != nil {
		return nil, fmt.Errorf("failed to migrate wallet schema: %w", err)
	}
	return &GormLedger{db: db, starting: startingBalance}, nil
}

func (l *GormLedger) loadForUpdate(tx *gorm.DB, userID string) (*WalletAccount, error) {
	var acct WalletAccount
	err := tx.Raw(`
		SELECT user_id, balance FROM wallet_accounts
		WHERE user_id = ? FOR UPDATE
	`, userID).Scan(&acct).Error
	if err != nil {
		return nil, err
	}
	if acct.UserID == "" {
		acct = WalletAccount{UserID: userID, Balance: l.starting}
		if err := tx.Create(&acct).Error; err != nil {
			return nil, err
		}
	}
	return &acct, nil
}

func (l *GormLedger) Debit(ctx context.Context, userID string, amount decimal.Decimal) (model.WalletSnapshot, error) {
	var snap model.WalletSnapshot
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		acct, err := l.loadForUpdate(tx, userID)
		if err != nil {
			return err
		}
		if acct.Balance.LessThan(amount) {
			return service.ErrInsufficientFunds
		}
		acct.Balance = acct.Balance.Sub(amount)
		if err := tx.Save(acct).Error; err != nil {
			return err
		}
		snap = model.WalletSnapshot{UserID: userID, Balance: acct.Balance}
		return nil
	})
	if err != nil {
		if errors.Is(err, service.ErrInsufficientFunds) {
			return model.WalletSnapshot{}, service.ErrInsufficientFunds
		}
		return model.WalletSnapshot{}, err
	}
	return snap, nil
}

func (l *GormLedger) Credit(ctx context.Context, userID string, amount decimal.Decimal) (model.WalletSnapshot, error) {
	var snap model.WalletSnapshot
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		acct, err := l.loadForUpdate(tx, userID)
		if err != nil {
			return err
		}
		acct.Balance = acct.Balance.Add(amount)
		if err := tx.Save(acct).Error; err != nil {
			return err
		}
		snap = model.WalletSnapshot{UserID: userID, Balance: acct.Balance}
		return nil
	})
	if err != nil {
		return model.WalletSnapshot{}, err
	}
	return snap, nil
}
