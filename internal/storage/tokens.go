package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInsufficientTokens is returned when a spend exceeds the balance.
	ErrInsufficientTokens = errors.New("storage: insufficient tokens")

	// ErrUnknownAccount is returned for a user without a token account.
	ErrUnknownAccount = errors.New("storage: unknown token account")
)

// LedgerEntry is one balance change.
type LedgerEntry struct {
	ID           int64
	User         string
	Delta        int
	BalanceAfter int
	Reason       string
	CreatedAt    time.Time
}

// EnsureAccount creates a token account with an initial grant the first
// time a user is seen. It returns the current balance and whether the
// account was created.
func (s *Store) EnsureAccount(user string, initial int) (int, bool, error) {
	if user == "" {
		return 0, false, fmt.Errorf("storage: user is required")
	}
	if initial < 0 {
		initial = 0
	}

	var balance int
	created := false
	err := s.inTx(func(tx *sql.Tx) error {
		res, err := tx.Exec(
			"INSERT OR IGNORE INTO token_accounts (user_name, balance) VALUES (?, ?)",
			user, initial,
		)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 1 {
			created = true
			if err := insertLedger(tx, user, initial, initial, "welcome bonus"); err != nil {
				return err
			}
		}
		return tx.QueryRow("SELECT balance FROM token_accounts WHERE user_name = ?", user).Scan(&balance)
	})
	if err != nil {
		return 0, false, fmt.Errorf("storage: cannot ensure account: %w", err)
	}
	return balance, created, nil
}

// Balance returns the token balance of a user.
func (s *Store) Balance(user string) (int, error) {
	var balance int
	err := s.db.QueryRow("SELECT balance FROM token_accounts WHERE user_name = ?", user).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrUnknownAccount
	}
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get balance: %w", err)
	}
	return balance, nil
}

// Spend atomically deducts tokens and returns the new balance.
func (s *Store) Spend(user string, amount int, reason string) (int, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("storage: spend amount must be positive, got %d", amount)
	}

	var balance int
	err := s.inTx(func(tx *sql.Tx) error {
		err := tx.QueryRow("SELECT balance FROM token_accounts WHERE user_name = ?", user).Scan(&balance)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrUnknownAccount
		}
		if err != nil {
			return err
		}
		if balance < amount {
			return ErrInsufficientTokens
		}

		balance -= amount
		if _, err := tx.Exec("UPDATE token_accounts SET balance = ? WHERE user_name = ?", balance, user); err != nil {
			return err
		}
		return insertLedger(tx, user, -amount, balance, reason)
	})
	if err != nil {
		if errors.Is(err, ErrInsufficientTokens) || errors.Is(err, ErrUnknownAccount) {
			return 0, err
		}
		return 0, fmt.Errorf("storage: cannot spend tokens: %w", err)
	}
	return balance, nil
}

// Grant adds tokens, creating the account if needed, and returns the new balance.
func (s *Store) Grant(user string, amount int, reason string) (int, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("storage: grant amount must be positive, got %d", amount)
	}
	if user == "" {
		return 0, fmt.Errorf("storage: user is required")
	}

	var balance int
	err := s.inTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec(
			"INSERT OR IGNORE INTO token_accounts (user_name, balance) VALUES (?, 0)",
			user,
		); err != nil {
			return err
		}
		if _, err := tx.Exec(
			"UPDATE token_accounts SET balance = balance + ? WHERE user_name = ?",
			amount, user,
		); err != nil {
			return err
		}
		if err := tx.QueryRow("SELECT balance FROM token_accounts WHERE user_name = ?", user).Scan(&balance); err != nil {
			return err
		}
		return insertLedger(tx, user, amount, balance, reason)
	})
	if err != nil {
		return 0, fmt.Errorf("storage: cannot grant tokens: %w", err)
	}
	return balance, nil
}

// LedgerEntries returns the most recent balance changes of a user.
func (s *Store) LedgerEntries(user string, limit int) ([]LedgerEntry, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT id, user_name, delta, balance_after, reason, created_at
		 FROM token_ledger
		 WHERE user_name = ?
		 ORDER BY id DESC
		 LIMIT ?`,
		user, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query ledger: %w", err)
	}
	defer rows.Close()

	var entries []LedgerEntry
	for rows.Next() {
		var e LedgerEntry
		var createdAt any
		if err := rows.Scan(&e.ID, &e.User, &e.Delta, &e.BalanceAfter, &e.Reason, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		e.CreatedAt = parseTime(createdAt)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return entries, nil
}

func insertLedger(tx *sql.Tx, user string, delta, balance int, reason string) error {
	_, err := tx.Exec(
		"INSERT INTO token_ledger (user_name, delta, balance_after, reason) VALUES (?, ?, ?, ?)",
		user, delta, balance, reason,
	)
	return err
}

// inTx runs fn in a transaction, committing on success.
func (s *Store) inTx(fn func(tx *sql.Tx) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		tx.Rollback() //nolint:errcheck // Original error is more useful
		return err
	}
	return tx.Commit()
}
