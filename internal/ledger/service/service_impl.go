package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	ledgerdomain "github.com/luisk202009/kuppel-dine-ease-sub001/internal/ledger/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
}

func NewService(p Params) ledgerdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("ledger.service"),
		genID: p.GenID,
	}
}

func (s *Service) CreateEntry(ctx context.Context, entry ledgerdomain.Entry) (*ledgerdomain.LedgerEntry, error) {
	var created *ledgerdomain.LedgerEntry
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		created, err = s.CreateEntryTx(ctx, tx, entry)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *Service) CreateEntryTx(ctx context.Context, tx *gorm.DB, entry ledgerdomain.Entry) (*ledgerdomain.LedgerEntry, error) {
	if entry.OrgID == 0 {
		return nil, ledgerdomain.ErrInvalidOrganization
	}
	sourceType := strings.TrimSpace(entry.SourceType)
	if sourceType == "" {
		return nil, ledgerdomain.ErrInvalidSourceType
	}
	if entry.SourceID == 0 {
		return nil, ledgerdomain.ErrInvalidSourceID
	}
	currency := strings.ToUpper(strings.TrimSpace(entry.Currency))
	if currency == "" {
		return nil, ledgerdomain.ErrInvalidCurrency
	}
	if entry.OccurredAt.IsZero() {
		return nil, ledgerdomain.ErrInvalidOccurredAt
	}

	postings := ledgerdomain.Compact(entry.Postings)
	if err := ledgerdomain.ValidateBalanced(postings); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	header := ledgerdomain.LedgerEntry{
		ID:         s.genID.Generate(),
		OrgID:      entry.OrgID,
		SourceType: sourceType,
		SourceID:   entry.SourceID,
		Currency:   currency,
		OccurredAt: entry.OccurredAt.UTC(),
		CreatedAt:  now,
	}
	if err := tx.WithContext(ctx).Create(&header).Error; err != nil {
		return nil, err
	}

	lines := make([]ledgerdomain.LedgerEntryLine, 0, len(postings))
	for _, p := range postings {
		accountID, err := s.ensureAccount(ctx, tx, entry.OrgID, p.AccountCode)
		if err != nil {
			return nil, err
		}
		lines = append(lines, ledgerdomain.LedgerEntryLine{
			ID:            s.genID.Generate(),
			LedgerEntryID: header.ID,
			AccountID:     accountID,
			Direction:     p.Direction,
			Amount:        p.Amount,
			CreatedAt:     now,
		})
	}
	if err := tx.WithContext(ctx).Create(&lines).Error; err != nil {
		return nil, err
	}

	s.log.Debug("ledger entry created",
		zap.String("org_id", entry.OrgID.String()),
		zap.String("source_type", sourceType),
		zap.String("source_id", entry.SourceID.String()),
		zap.Int("lines", len(lines)),
	)
	return &header, nil
}

type balanceRow struct {
	Code      string
	Direction ledgerdomain.LedgerEntryDirection
	Amount    decimal.Decimal
}

func (s *Service) Balances(ctx context.Context, orgID snowflake.ID) (map[string]ledgerdomain.AccountBalance, error) {
	if orgID == 0 {
		return nil, ledgerdomain.ErrInvalidOrganization
	}

	var rows []balanceRow
	err := s.db.WithContext(ctx).
		Table("ledger_entry_lines AS l").
		Select("a.code AS code, l.direction AS direction, l.amount AS amount").
		Joins("JOIN ledger_accounts a ON a.id = l.account_id").
		Where("a.org_id = ?", orgID).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	balances := make(map[string]ledgerdomain.AccountBalance)
	for _, row := range rows {
		b := balances[row.Code]
		switch row.Direction {
		case ledgerdomain.LedgerEntryDirectionDebit:
			b.Debit = b.Debit.Add(row.Amount)
		case ledgerdomain.LedgerEntryDirectionCredit:
			b.Credit = b.Credit.Add(row.Amount)
		}
		balances[row.Code] = b
	}
	return balances, nil
}

func (s *Service) ensureAccount(ctx context.Context, tx *gorm.DB, orgID snowflake.ID, code string) (snowflake.ID, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return 0, ledgerdomain.ErrInvalidAccount
	}

	account := ledgerdomain.LedgerAccount{
		ID:        s.genID.Generate(),
		OrgID:     orgID,
		Code:      code,
		Name:      ledgerdomain.AccountName(code),
		CreatedAt: time.Now().UTC(),
	}
	if err := tx.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "org_id"}, {Name: "code"}}, DoNothing: true}).
		Create(&account).Error; err != nil {
		return 0, err
	}

	var stored ledgerdomain.LedgerAccount
	if err := tx.WithContext(ctx).
		Where("org_id = ? AND code = ?", orgID, code).
		First(&stored).Error; err != nil {
		return 0, err
	}
	return stored.ID, nil
}
