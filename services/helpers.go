package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tabcore/debate-tab/models"
)

// txRunner выполняет fn в границах одной транзакции.
type txRunner func(ctx context.Context, fn func(tx *sql.Tx) error) error

// transactionRunner привязывает runInTx к пулу соединений.
func transactionRunner(db *sql.DB) txRunner {
	return func(ctx context.Context, fn func(tx *sql.Tx) error) error {
		return runInTx(ctx, db, fn)
	}
}

// runInTx выполняет fn в транзакции с корректным rollback/commit.
func runInTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("transaction error: %w (rollback also failed: %v)", err, rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func RoomsToValues(slice []*models.Room) []models.Room {
	if slice == nil {
		return []models.Room{}
	}
	result := make([]models.Room, len(slice))
	for i, ptr := range slice {
		if ptr != nil {
			result[i] = *ptr
		}
	}
	return result
}

func RoundsToValues(slice []*models.Round) []models.Round {
	if slice == nil {
		return []models.Round{}
	}
	result := make([]models.Round, len(slice))
	for i, ptr := range slice {
		if ptr != nil {
			result[i] = *ptr
		}
	}
	return result
}

// institutionsByTeam строит индекс team ID -> institution для проверки
// конфликтов судей.
func institutionsByTeam(teams []*models.Team) map[int]string {
	index := make(map[int]string, len(teams))
	for _, team := range teams {
		index[team.ID] = team.Institution
	}
	return index
}
