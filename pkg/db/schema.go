// Package db provides SQLite database management for the ledger.
package db

// Schema defines the SQL statements to create database tables.
const Schema = `
-- Accounts table
-- Balance is derived-but-stored: only the ledger engine's delta routine
-- may change it once the account exists.
CREATE TABLE IF NOT EXISTS accounts (
    id TEXT PRIMARY KEY,               -- UUID
    name TEXT NOT NULL,
    account_type TEXT NOT NULL,        -- 'On Budget', 'Off Budget' or 'External'
    account_sub_type TEXT,             -- e.g. 'Checking', 'Savings'
    balance REAL NOT NULL DEFAULT 0,
    currency TEXT NOT NULL DEFAULT 'USD',
    is_default INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_accounts_name
    ON accounts(name);

-- Categories table
CREATE TABLE IF NOT EXISTS categories (
    id TEXT PRIMARY KEY,               -- UUID
    name TEXT NOT NULL UNIQUE,
    description TEXT,
    group_id TEXT,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);

-- Budgets table
CREATE TABLE IF NOT EXISTS budgets (
    id TEXT PRIMARY KEY,               -- UUID
    name TEXT NOT NULL,
    description TEXT,
    amount REAL NOT NULL,
    start_date TIMESTAMP NOT NULL,
    end_date TIMESTAMP,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);

-- Transactions table
-- Every row has exactly two legs: source and destination. The sum of the
-- balance deltas applied for a row is always zero.
CREATE TABLE IF NOT EXISTS transactions (
    id TEXT PRIMARY KEY,               -- UUID
    source_account_id TEXT NOT NULL REFERENCES accounts(id),
    destination_account_id TEXT NOT NULL REFERENCES accounts(id),
    destination_name TEXT,             -- denormalized destination account name
    description TEXT NOT NULL,
    amount REAL NOT NULL,              -- signed; positive = source -> destination
    category TEXT NOT NULL DEFAULT '', -- legacy free-text name, kept for display
    category_id TEXT REFERENCES categories(id),
    budget_id TEXT REFERENCES budgets(id),
    transaction_date TIMESTAMP NOT NULL,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_transactions_source
    ON transactions(source_account_id);

CREATE INDEX IF NOT EXISTS idx_transactions_destination
    ON transactions(destination_account_id);

CREATE INDEX IF NOT EXISTS idx_transactions_date
    ON transactions(transaction_date);

-- Rules table
-- Conditions and actions are ordered lists of tagged records serialized
-- as JSON text.
CREATE TABLE IF NOT EXISTS rules (
    id TEXT PRIMARY KEY,               -- UUID
    name TEXT NOT NULL,
    description TEXT,
    is_active INTEGER NOT NULL DEFAULT 1,
    priority INTEGER NOT NULL DEFAULT 100,
    group_id TEXT,
    conditions_json TEXT NOT NULL,
    actions_json TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_rules_active_priority
    ON rules(is_active, priority);
`

// InitializeSchema initializes the database schema.
// It creates all tables if they don't exist.
func InitializeSchema(conn *Connection) error {
	if _, err := conn.Exec(Schema); err != nil {
		return err
	}
	return nil
}
