package db

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// ErrPatientNotFound is returned by Patient for an unknown id.
var ErrPatientNotFound = errors.New("patient not found")

const dateLayout = "2006-01-02"

// Store provides access to the roster database.
type Store struct {
	db *sql.DB
}

// DefaultRosterPath returns the default roster database path.
func DefaultRosterPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "roster.sqlite"
	}
	return filepath.Join(dir, "chartnote", "roster.sqlite")
}

// Open opens an existing roster file in read-only mode.
func Open(path string) (*Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("open roster: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?mode=ro", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Verify connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Store{db: db}, nil
}

// OpenMemory returns an in-memory store holding the demo roster.
func OpenMemory() (*Store, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// Every connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)

	if err := populate(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Seed writes the demo roster to the database file at path, creating it and
// its parent directory if needed. Existing demo rows are replaced.
func Seed(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create roster dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	return populate(db)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Patients returns the whole roster ordered by id.
func (s *Store) Patients() ([]Patient, error) {
	rows, err := s.db.Query(`
		SELECT id, name, age, gender, phone, email, lastConsultation, consultationCount
		FROM patients
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query patients: %w", err)
	}

	var patients []Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		patients = append(patients, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range patients {
		if err := s.loadDetails(&patients[i]); err != nil {
			return nil, err
		}
	}
	return patients, nil
}

// Patient returns one patient with conditions and consultation history.
func (s *Store) Patient(id string) (Patient, error) {
	row := s.db.QueryRow(`
		SELECT id, name, age, gender, phone, email, lastConsultation, consultationCount
		FROM patients
		WHERE id = ?
	`, id)

	p, err := scanPatient(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Patient{}, fmt.Errorf("%w: %s", ErrPatientNotFound, id)
	}
	if err != nil {
		return Patient{}, err
	}
	if err := s.loadDetails(&p); err != nil {
		return Patient{}, err
	}
	return p, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPatient(row scanner) (Patient, error) {
	var p Patient
	var last sql.NullString
	if err := row.Scan(&p.ID, &p.Name, &p.Age, &p.Gender, &p.Phone, &p.Email,
		&last, &p.ConsultationCount); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return p, err
		}
		return p, fmt.Errorf("scan patient: %w", err)
	}
	if last.Valid && last.String != "" {
		t, err := time.Parse(dateLayout, last.String)
		if err != nil {
			return p, fmt.Errorf("patient %s: last consultation: %w", p.ID, err)
		}
		p.LastConsultation = &t
	}
	return p, nil
}

func (s *Store) loadDetails(p *Patient) error {
	conds, err := s.conditionsFor(p.ID)
	if err != nil {
		return err
	}
	p.Conditions = conds

	hist, err := s.consultationsFor(p.ID)
	if err != nil {
		return err
	}
	p.Consultations = hist
	return nil
}

func (s *Store) conditionsFor(patientID string) ([]string, error) {
	rows, err := s.db.Query(`
		SELECT name FROM conditions
		WHERE patientId = ?
		ORDER BY position ASC
	`, patientID)
	if err != nil {
		return nil, fmt.Errorf("query conditions: %w", err)
	}
	defer rows.Close()

	var conds []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("scan condition: %w", err)
		}
		conds = append(conds, c)
	}
	return conds, rows.Err()
}

// consultationsFor returns a patient's history, most recent first.
func (s *Store) consultationsFor(patientID string) ([]Consultation, error) {
	rows, err := s.db.Query(`
		SELECT id, patientId, date, status, duration
		FROM consultations
		WHERE patientId = ?
		ORDER BY date DESC
	`, patientID)
	if err != nil {
		return nil, fmt.Errorf("query consultations: %w", err)
	}
	defer rows.Close()

	var out []Consultation
	for rows.Next() {
		var c Consultation
		var date string
		if err := rows.Scan(&c.ID, &c.PatientID, &date, &c.Status, &c.Duration); err != nil {
			return nil, fmt.Errorf("scan consultation: %w", err)
		}
		t, err := time.Parse(dateLayout, date)
		if err != nil {
			return nil, fmt.Errorf("consultation %s: date: %w", c.ID, err)
		}
		c.Date = t
		out = append(out, c)
	}
	return out, rows.Err()
}
