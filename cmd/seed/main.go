package main

import (
	"context"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/odontoweb/clinic-agenda/internal/db"
	"github.com/odontoweb/clinic-agenda/internal/schedule"
)

var logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()

func main() {
	logger.Info().Msg("seed starting")

	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		logger.Fatal().Msg("POSTGRES_DSN is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, dsn)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect postgres")
	}
	defer pool.Close()

	gofakeit.Seed(time.Now().UnixNano())

	patients, err := seedPatients(context.Background(), pool, 200)
	if err != nil {
		logger.Fatal().Err(err).Msg("seed patients")
	}

	if err := seedAppointments(context.Background(), pool, patients, 14); err != nil {
		logger.Fatal().Err(err).Msg("seed appointments")
	}

	logger.Info().Msg("seed complete")
}

func seedPatients(ctx context.Context, pool *pgxpool.Pool, count int) ([]uuid.UUID, error) {
	logger.Info().Int("count", count).Msg("seeding patients")

	tx, err := pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	ids := make([]uuid.UUID, 0, count)
	for i := 0; i < count; i++ {
		id := uuid.New()
		name := gofakeit.Name()
		phone := gofakeit.Phone()
		email := gofakeit.Email()

		// Most of the clinic's patients are children with a guardian on file.
		var guardian *string
		if gofakeit.Bool() {
			g := gofakeit.Name()
			guardian = &g
		}

		_, err := tx.Exec(ctx, `
			INSERT INTO patients (id, name, guardian, phone, email, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, now(), now())
		`, id, name, guardian, phone, email)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	logger.Info().Msg("patients seeded")
	return ids, nil
}

var kinds = []string{
	"Consulta de valoración",
	"Limpieza dental",
	"Ortodoncia",
	"Resina",
	"Extracción",
	"Endodoncia",
	"Urgencia",
}

var durations = []int{15, 30, 30, 30, 60, 90}

// seedAppointments fills the coming days with a believable agenda. Each
// placement goes through the slot finder against the bookings seeded so far,
// so the result never violates the overlap policy.
func seedAppointments(ctx context.Context, pool *pgxpool.Pool, patients []uuid.UUID, days int) error {
	logger.Info().Int("days", days).Msg("seeding appointments")

	hours := schedule.DefaultHours()
	now := time.Now()
	start := schedule.Date{Year: now.Year(), Month: now.Month(), Day: now.Day()}

	var bookings []schedule.Booking
	total := 0

	for day := 0; day < days; day++ {
		date := start.AddDays(day)
		perDay := gofakeit.Number(6, 12)

		for i := 0; i < perDay; i++ {
			duration := durations[gofakeit.Number(0, len(durations)-1)]
			wish := schedule.TimeOfDay{
				Hour:   gofakeit.Number(9, 19),
				Minute: 15 * gofakeit.Number(0, 3),
			}

			cand := schedule.Candidate{Date: date, Time: wish, Duration: duration}
			slot, err := schedule.NextSlot(cand, bookings, hours, 2)
			if err != nil {
				// Day saturated; move on.
				break
			}
			if slot.Date != date {
				continue
			}

			id := uuid.New()
			patientID := patients[gofakeit.Number(0, len(patients)-1)]
			kind := kinds[gofakeit.Number(0, len(kinds)-1)]
			status := "pending"
			if gofakeit.Bool() {
				status = "confirmed"
			}

			_, err = pool.Exec(ctx, `
				INSERT INTO appointments
					(id, patient_id, date, start_time, duration_minutes, kind, notes, status, created_at, updated_at)
				VALUES ($1, $2, $3::date, $4::time, $5, $6, '', $7, now(), now())
			`, id, patientID, slot.Date.String(), slot.Time.String(), duration, kind, status)
			if err != nil {
				return err
			}

			bookings = append(bookings, schedule.Booking{
				ID:       id,
				Date:     slot.Date,
				Time:     slot.Time,
				Duration: duration,
			})
			total++
		}
	}

	logger.Info().Int("total", total).Msg("appointments seeded")
	return nil
}
