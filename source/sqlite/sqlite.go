/*
Package sqlite provides SQLite-backed implementations of the source
capabilities.

PURPOSE:
  A local stand-in for the remote systems, selected at process startup.
  It exists for two reasons:

  1. The work-agreement source predates its remote counterpart; until the
     remote interface went live, resolution ran against a local table.
     Keeping that as a swappable source implementation (instead of
     branching inside the resolver) preserves one code path.
  2. Demo and development environments run the full pipeline without any
     remote connectivity, seeded with the canonical demo dataset.

INTERFACES IMPLEMENTED:
  condition.ValiditySource / condition.DetailSource
  workforce.Source
  enrich.EmployeeSource / enrich.ProjectSource / enrich.BusinessPartnerSource

KEY TABLES:
  condition_validities:  Validity rows keyed by record id + personnel
  condition_details:     Rate detail per record id
  work_agreements:       One row per validity period (duplicates expected)
  employees:             Display detail per agreement id
  projects:              Project -> customer mapping
  business_partners:     Customer display name + grouping

WAL MODE:
  Opened with WAL for read concurrency, matching how the request handlers
  fan out reads.

USAGE:
  store, err := sqlite.New("./data/pricing.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()
  store.Seed(ctx, demoDataset)

SEE ALSO:
  - source/memory: In-memory equivalent for tests
  - source/odata: The real remote implementations
  - cmd/server/main.go: Startup source selection
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/pricing-engine/condition"
	"github.com/warp/pricing-engine/enrich"
	"github.com/warp/pricing-engine/workforce"
)

// Store implements all source capabilities over one SQLite database.
type Store struct {
	db *sql.DB
}

// New opens (and migrates) the database at dbPath.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS condition_validities (
		condition_record TEXT NOT NULL,
		condition_type TEXT NOT NULL,
		personnel TEXT NOT NULL,
		customer TEXT NOT NULL DEFAULT '',
		engagement_project TEXT NOT NULL DEFAULT '',
		mandantengruppe TEXT NOT NULL DEFAULT '',
		valid_from TEXT NOT NULL DEFAULT '',
		valid_to TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_validities_personnel
		ON condition_validities(personnel);
	CREATE INDEX IF NOT EXISTS idx_validities_type
		ON condition_validities(condition_type);

	CREATE TABLE IF NOT EXISTS condition_details (
		condition_record TEXT PRIMARY KEY,
		sequential_number TEXT NOT NULL DEFAULT '',
		condition_table TEXT NOT NULL DEFAULT '',
		rate_value TEXT,
		rate_unit TEXT NOT NULL DEFAULT '',
		currency TEXT NOT NULL DEFAULT '',
		quantity_unit TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS work_agreements (
		agreement_id TEXT NOT NULL,
		worker_id TEXT NOT NULL,
		company_code TEXT NOT NULL DEFAULT '',
		company_code_name TEXT NOT NULL DEFAULT '',
		company TEXT NOT NULL DEFAULT '',
		start_date TEXT NOT NULL DEFAULT '',
		end_date TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_agreements_worker
		ON work_agreements(worker_id);
	CREATE INDEX IF NOT EXISTS idx_agreements_agreement
		ON work_agreements(agreement_id);

	CREATE TABLE IF NOT EXISTS employees (
		agreement_id TEXT PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		cost_center TEXT NOT NULL DEFAULT '',
		company_code TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS projects (
		project_id TEXT PRIMARY KEY,
		customer TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS business_partners (
		customer TEXT PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		mandantengruppe TEXT NOT NULL DEFAULT ''
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// QUERY HELPERS
// =============================================================================

func inClause(column string, n int) string {
	return column + " IN (?" + strings.Repeat(",?", n-1) + ")"
}

func toArgs(values []string) []any {
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v
	}
	return args
}

// =============================================================================
// CONDITION CAPABILITIES
// =============================================================================

func (s *Store) QueryValidities(ctx context.Context, q condition.ValidityQuery) ([]condition.Validity, error) {
	// No types means no type can match; in-semantics over an empty list.
	if len(q.Types) == 0 {
		return nil, nil
	}

	where := []string{inClause("condition_type", len(q.Types))}
	args := toArgs(q.Types)

	for _, c := range []struct {
		column string
		values []string
	}{
		{"personnel", q.Personnel},
		{"customer", q.Customers},
		{"engagement_project", q.EngagementProjects},
		{"mandantengruppe", q.Mandantengruppen},
	} {
		if len(c.values) > 0 {
			where = append(where, inClause(c.column, len(c.values)))
			args = append(args, toArgs(c.values)...)
		}
	}

	query := `SELECT condition_record, condition_type, personnel, customer,
		engagement_project, mandantengruppe, valid_from, valid_to
		FROM condition_validities WHERE ` + strings.Join(where, " AND ")

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var validities []condition.Validity
	for rows.Next() {
		var v condition.Validity
		if err := rows.Scan(&v.ConditionRecord, &v.ConditionType, &v.Personnel,
			&v.Customer, &v.EngagementProject, &v.Mandantengruppe,
			&v.ValidFrom, &v.ValidTo); err != nil {
			return nil, err
		}
		validities = append(validities, v)
	}
	return validities, rows.Err()
}

func (s *Store) QueryDetails(ctx context.Context, conditionRecordIDs []string) ([]condition.Detail, error) {
	if len(conditionRecordIDs) == 0 {
		return nil, nil
	}
	query := `SELECT condition_record, sequential_number, condition_table,
		rate_value, rate_unit, currency, quantity_unit
		FROM condition_details WHERE ` + inClause("condition_record", len(conditionRecordIDs))

	rows, err := s.db.QueryContext(ctx, query, toArgs(conditionRecordIDs)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var details []condition.Detail
	for rows.Next() {
		var d condition.Detail
		var rate sql.NullString
		if err := rows.Scan(&d.ConditionRecord, &d.SequentialNumber, &d.ConditionTable,
			&rate, &d.RateUnit, &d.Currency, &d.QuantityUnit); err != nil {
			return nil, err
		}
		if rate.Valid {
			value, err := decimal.NewFromString(rate.String)
			if err != nil {
				return nil, fmt.Errorf("condition %s: bad rate %q: %w", d.ConditionRecord, rate.String, err)
			}
			d.RateValue = decimal.NullDecimal{Decimal: value, Valid: true}
		}
		details = append(details, d)
	}
	return details, rows.Err()
}

// =============================================================================
// WORKFORCE CAPABILITY
// =============================================================================

func (s *Store) QueryByWorkerIDs(ctx context.Context, workerIDs []string) ([]workforce.Agreement, error) {
	return s.queryAgreements(ctx, "worker_id", workerIDs)
}

func (s *Store) QueryByAgreementIDs(ctx context.Context, agreementIDs []string) ([]workforce.Agreement, error) {
	return s.queryAgreements(ctx, "agreement_id", agreementIDs)
}

func (s *Store) queryAgreements(ctx context.Context, column string, values []string) ([]workforce.Agreement, error) {
	if len(values) == 0 {
		return nil, nil
	}
	// rowid preserves insertion order, matching the remote source's
	// stable row order that dedup relies on.
	query := `SELECT agreement_id, worker_id, company_code, company_code_name,
		company, start_date, end_date
		FROM work_agreements WHERE ` + inClause(column, len(values)) + ` ORDER BY rowid`

	rows, err := s.db.QueryContext(ctx, query, toArgs(values)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var agreements []workforce.Agreement
	for rows.Next() {
		var a workforce.Agreement
		if err := rows.Scan(&a.ID, &a.WorkerID, &a.CompanyCode, &a.CompanyCodeName,
			&a.Company, &a.StartDate, &a.EndDate); err != nil {
			return nil, err
		}
		agreements = append(agreements, a)
	}
	return agreements, rows.Err()
}

// =============================================================================
// ENRICHMENT CAPABILITIES
// =============================================================================

func (s *Store) QueryEmployees(ctx context.Context, agreementIDs []string) ([]enrich.EmployeeRow, error) {
	if len(agreementIDs) == 0 {
		return nil, nil
	}
	query := `SELECT agreement_id, name, cost_center, company_code
		FROM employees WHERE ` + inClause("agreement_id", len(agreementIDs))

	rows, err := s.db.QueryContext(ctx, query, toArgs(agreementIDs)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []enrich.EmployeeRow
	for rows.Next() {
		var e enrich.EmployeeRow
		if err := rows.Scan(&e.AgreementID, &e.Name, &e.CostCenter, &e.CompanyCode); err != nil {
			return nil, err
		}
		employees = append(employees, e)
	}
	return employees, rows.Err()
}

func (s *Store) QueryProjects(ctx context.Context, projectIDs []string) ([]enrich.ProjectRow, error) {
	if len(projectIDs) == 0 {
		return nil, nil
	}
	query := `SELECT project_id, customer FROM projects WHERE ` + inClause("project_id", len(projectIDs))

	rows, err := s.db.QueryContext(ctx, query, toArgs(projectIDs)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []enrich.ProjectRow
	for rows.Next() {
		var p enrich.ProjectRow
		if err := rows.Scan(&p.ProjectID, &p.Customer); err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func (s *Store) QueryBusinessPartners(ctx context.Context, customerIDs []string) ([]enrich.BusinessPartnerRow, error) {
	if len(customerIDs) == 0 {
		return nil, nil
	}
	query := `SELECT customer, name, mandantengruppe FROM business_partners
		WHERE ` + inClause("customer", len(customerIDs))

	rows, err := s.db.QueryContext(ctx, query, toArgs(customerIDs)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var partners []enrich.BusinessPartnerRow
	for rows.Next() {
		var b enrich.BusinessPartnerRow
		if err := rows.Scan(&b.Customer, &b.Name, &b.Mandantengruppe); err != nil {
			return nil, err
		}
		partners = append(partners, b)
	}
	return partners, rows.Err()
}

// =============================================================================
// SEEDING
// =============================================================================

// Dataset is a full fixture load for every table.
type Dataset struct {
	Validities       []condition.Validity
	Details          []condition.Detail
	Agreements       []workforce.Agreement
	Employees        []enrich.EmployeeRow
	Projects         []enrich.ProjectRow
	BusinessPartners []enrich.BusinessPartnerRow
}

// Seed clears all tables and loads the dataset atomically.
func (s *Store) Seed(ctx context.Context, d Dataset) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"condition_validities", "condition_details",
		"work_agreements", "employees", "projects", "business_partners"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}

	for _, v := range d.Validities {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO condition_validities (condition_record, condition_type, personnel,
				customer, engagement_project, mandantengruppe, valid_from, valid_to)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			v.ConditionRecord, v.ConditionType, v.Personnel, v.Customer,
			v.EngagementProject, v.Mandantengruppe, v.ValidFrom, v.ValidTo); err != nil {
			return err
		}
	}
	for _, dt := range d.Details {
		var rate any
		if dt.RateValue.Valid {
			rate = dt.RateValue.Decimal.String()
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO condition_details (condition_record, sequential_number,
				condition_table, rate_value, rate_unit, currency, quantity_unit)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			dt.ConditionRecord, dt.SequentialNumber, dt.ConditionTable,
			rate, dt.RateUnit, dt.Currency, dt.QuantityUnit); err != nil {
			return err
		}
	}
	for _, a := range d.Agreements {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO work_agreements (agreement_id, worker_id, company_code,
				company_code_name, company, start_date, end_date)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			a.ID, a.WorkerID, a.CompanyCode, a.CompanyCodeName,
			a.Company, a.StartDate, a.EndDate); err != nil {
			return err
		}
	}
	for _, e := range d.Employees {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO employees (agreement_id, name, cost_center, company_code)
			VALUES (?, ?, ?, ?)`,
			e.AgreementID, e.Name, e.CostCenter, e.CompanyCode); err != nil {
			return err
		}
	}
	for _, p := range d.Projects {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO projects (project_id, customer) VALUES (?, ?)`,
			p.ProjectID, p.Customer); err != nil {
			return err
		}
	}
	for _, b := range d.BusinessPartners {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO business_partners (customer, name, mandantengruppe)
			VALUES (?, ?, ?)`,
			b.Customer, b.Name, b.Mandantengruppe); err != nil {
			return err
		}
	}

	return tx.Commit()
}
