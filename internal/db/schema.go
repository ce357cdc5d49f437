package db

import (
	"database/sql"
	"fmt"
)

const schema = `
	CREATE TABLE IF NOT EXISTS patients (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		age INTEGER NOT NULL,
		gender TEXT NOT NULL,
		phone TEXT NOT NULL,
		email TEXT NOT NULL,
		lastConsultation TEXT,
		consultationCount INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS conditions (
		patientId TEXT NOT NULL REFERENCES patients(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		name TEXT NOT NULL,
		PRIMARY KEY (patientId, position)
	);

	CREATE TABLE IF NOT EXISTS consultations (
		id TEXT PRIMARY KEY,
		patientId TEXT NOT NULL REFERENCES patients(id) ON DELETE CASCADE,
		date TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'completed',
		duration TEXT NOT NULL DEFAULT ''
	);
`

type demoPatient struct {
	id, name           string
	age                int
	gender             string
	phone, email, last string
	count              int
	conditions         []string
	history            [][3]string // id, date, duration
}

var demoRoster = []demoPatient{
	{"P001", "김영희", 45, "여성", "010-1234-5678", "kim.younghee@email.com", "2024-01-20", 3,
		[]string{"고혈압", "두통"},
		[][3]string{{"C001", "2024-01-20", "15:30"}, {"C002", "2024-01-15", "12:45"}}},
	{"P002", "박철수", 62, "남성", "010-2345-6789", "park.cs@email.com", "2024-01-18", 5,
		[]string{"당뇨병", "혈압관리"},
		[][3]string{{"C003", "2024-01-18", "18:20"}}},
	{"P003", "이수진", 34, "여성", "010-3456-7890", "lee.sujin@email.com", "2024-01-22", 2,
		[]string{"갑상선 기능항진증"},
		[][3]string{{"C004", "2024-01-22", "20:15"}}},
	{"P004", "최민호", 28, "남성", "010-4567-8901", "choi.minho@email.com", "2024-01-19", 1,
		[]string{"알레르기성 비염"},
		[][3]string{{"C005", "2024-01-19", "10:30"}}},
	{"P005", "정미선", 56, "여성", "010-5678-9012", "jung.misun@email.com", "2024-01-21", 4,
		[]string{"골다공증", "관절염"},
		[][3]string{{"C006", "2024-01-21", "16:45"}}},
}

// populate creates the schema and writes the demo roster in one transaction.
func populate(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for _, p := range demoRoster {
		if _, err := tx.Exec(`DELETE FROM conditions WHERE patientId = ?`, p.id); err != nil {
			return fmt.Errorf("clear conditions for %s: %w", p.id, err)
		}
		if _, err := tx.Exec(`DELETE FROM consultations WHERE patientId = ?`, p.id); err != nil {
			return fmt.Errorf("clear consultations for %s: %w", p.id, err)
		}
		if _, err := tx.Exec(`INSERT OR REPLACE INTO patients
			(id, name, age, gender, phone, email, lastConsultation, consultationCount)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			p.id, p.name, p.age, p.gender, p.phone, p.email, p.last, p.count); err != nil {
			return fmt.Errorf("insert patient %s: %w", p.id, err)
		}
		for i, c := range p.conditions {
			if _, err := tx.Exec(`INSERT INTO conditions (patientId, position, name) VALUES (?, ?, ?)`,
				p.id, i, c); err != nil {
				return fmt.Errorf("insert condition for %s: %w", p.id, err)
			}
		}
		for _, h := range p.history {
			if _, err := tx.Exec(`INSERT INTO consultations (id, patientId, date, status, duration)
				VALUES (?, ?, ?, 'completed', ?)`, h[0], p.id, h[1], h[2]); err != nil {
				return fmt.Errorf("insert consultation %s: %w", h[0], err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
