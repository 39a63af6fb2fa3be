package records

import (
	"context"
	"fmt"
)

// Seed inserts the portal's demo data. Each table is seeded only when it is
// empty, so restarts never overwrite operator-modified rows. Risk labels are
// inserted exactly as the demo dataset has them, short forms included.
func (r *Repository) Seed(ctx context.Context) error {
	if err := r.seedTable(ctx, "doctors", seedDoctors); err != nil {
		return err
	}
	if err := r.seedTable(ctx, "patients", seedPatients); err != nil {
		return err
	}
	if err := r.seedTable(ctx, "appointments", seedAppointments); err != nil {
		return err
	}
	// Explicit seed ids bypass the sequences; realign them so later inserts
	// do not collide.
	for _, table := range []string{"patients", "appointments"} {
		query := fmt.Sprintf(
			`SELECT setval(pg_get_serial_sequence('%s', 'id'), (SELECT COALESCE(MAX(id), 1) FROM %s))`,
			table, table)
		if _, err := r.db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("records: realign %s sequence: %w", table, err)
		}
	}
	return nil
}

func (r *Repository) seedTable(ctx context.Context, table, insert string) error {
	var count int
	if err := r.db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&count); err != nil {
		return fmt.Errorf("records: count %s: %w", table, err)
	}
	if count > 0 {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, insert); err != nil {
		return fmt.Errorf("records: seed %s: %w", table, err)
	}
	return nil
}

const seedDoctors = `
INSERT INTO doctors (id, name, specialty, location, experience, photo) VALUES
  (1, 'Dr. Sarah Johnson', 'Obstetrics & Gynecology', 'New York', 10, 'doctor1.jpg'),
  (2, 'Dr. Michael Chen', 'Pediatrics', 'Los Angeles', 8, 'doctor2.jpg'),
  (3, 'Dr. Emily Davis', 'Maternal-Fetal Medicine', 'Chicago', 12, 'doctor3.jpg'),
  (4, 'Dr. Robert Wilson', 'Neonatology', 'Houston', 15, 'doctor4.jpg'),
  (5, 'Dr. Lisa Brown', 'Family Medicine', 'Phoenix', 9, 'rupesh.jpg')`

const seedPatients = `
INSERT INTO patients (id, first_name, last_name, patient_type, risk_level, doctor_id) VALUES
  (1, 'Sarah', 'Connor', 'Mother', 'High Risk', 1),
  (2, 'Baby', 'Doe', 'Child', 'Normal', 2),
  (3, 'Emily', 'Blunt', 'Mother', 'Moderate', 1),
  (4, 'John', 'Smith', 'Child', 'Normal', 2),
  (5, 'Anna', 'Davis', 'Mother', 'Low Risk', 3),
  (6, 'Michael', 'Johnson', 'Child', 'Normal', 4),
  (7, 'Lisa', 'Wilson', 'Mother', 'High Risk', 5),
  (8, 'David', 'Brown', 'Child', 'Moderate', 2),
  (9, 'Maria', 'Garcia', 'Mother', 'Low Risk', 1),
  (10, 'James', 'Miller', 'Child', 'Normal', 3),
  (11, 'Patricia', 'Taylor', 'Mother', 'Moderate', 4),
  (12, 'Robert', 'Anderson', 'Child', 'High Risk', 5),
  (13, 'Jennifer', 'Thomas', 'Mother', 'Low Risk', 1),
  (14, 'Christopher', 'Jackson', 'Child', 'Normal', 2),
  (15, 'Linda', 'White', 'Mother', 'High Risk', 3),
  (16, 'Daniel', 'Harris', 'Child', 'Moderate', 4),
  (17, 'Barbara', 'Martin', 'Mother', 'Low Risk', 5),
  (18, 'Matthew', 'Thompson', 'Child', 'Normal', 1)`

const seedAppointments = `
INSERT INTO appointments (id, patient_id, doctor_id, date, time, reason, status) VALUES
  (1, 1, 1, '2024-01-15', '10:00', 'Regular checkup', 'Completed'),
  (2, 2, 2, '2024-01-16', '14:30', 'Vaccination', 'Completed'),
  (3, 3, 1, '2024-01-17', '09:00', 'Follow-up', 'Completed'),
  (4, 4, 2, '2024-01-18', '11:15', 'Growth monitoring', 'Booked'),
  (5, 5, 3, '2024-01-19', '16:00', 'Prenatal care', 'Booked'),
  (6, 6, 4, '2024-01-20', '13:45', 'Newborn check', 'Scheduled'),
  (7, 7, 5, '2024-01-21', '08:30', 'High risk monitoring', 'Booked')`
