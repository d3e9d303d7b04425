package main

import (
	"context"
	"database/sql"

	"npo-crm/internal/config"
	"npo-crm/internal/database"
	"npo-crm/internal/logger"
	"npo-crm/pkg/utils"

	"github.com/lib/pq"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

type seedUser struct {
	email string
	name  string
	role  string
}

var seedUsers = []seedUser{
	{"admin@npo.local", "Ada Admin", "admin"},
	{"manager@npo.local", "Mori Manager", "manager"},
	{"casework@npo.local", "Casey Worker", "caseworker"},
	{"fundraise@npo.local", "Farah Fundraiser", "fundraiser"},
}

// Seed populates a development database with users, scope grants and sample
// CRM records, then prints a JWT per user for manual API testing.
func Seed(lc fx.Lifecycle, pg *database.PostgresDB, cfg *config.Config, log *zap.Logger, shutdowner fx.Shutdowner) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				defer func() {
					if err := shutdowner.Shutdown(); err != nil {
						log.Error("Failed to shutdown", zap.Error(err))
					}
				}()

				utils.SetSecret(cfg.JWTSecret)
				log.Info("🌱 Seeding development data...")

				ctx := context.Background()
				db := pg.DB

				userIDs := map[string]int64{}
				for _, u := range seedUsers {
					var id int64
					err := db.QueryRowContext(ctx, `
						INSERT INTO users (email, display_name, role)
						VALUES ($1, $2, $3)
						ON CONFLICT (email) DO UPDATE SET display_name = EXCLUDED.display_name, role = EXCLUDED.role
						RETURNING id`,
						u.email, u.name, u.role).Scan(&id)
					if err != nil {
						log.Fatal("Failed to seed user", zap.String("email", u.email), zap.Error(err))
					}
					userIDs[u.role] = id
				}
				log.Info("Users ready", zap.Int("count", len(seedUsers)))

				if err := seedScopes(ctx, db, userIDs); err != nil {
					log.Fatal("Failed to seed scope grants", zap.Error(err))
				}

				var accounts int64
				if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM accounts").Scan(&accounts); err != nil {
					log.Fatal("Failed to inspect accounts", zap.Error(err))
				}
				if accounts > 0 {
					log.Info("Sample records already present, skipping")
				} else if err := seedRecords(ctx, db, userIDs); err != nil {
					log.Fatal("Failed to seed sample records", zap.Error(err))
				} else {
					log.Info("Sample records created")
				}

				for _, u := range seedUsers {
					token, err := utils.GenerateToken(userIDs[u.role], u.role)
					if err != nil {
						log.Error("Failed to mint token", zap.String("role", u.role), zap.Error(err))
						continue
					}
					log.Info("Dev token", zap.String("role", u.role), zap.String("token", token))
				}

				log.Info("✅ Seeding complete")
			}()
			return nil
		},
	})
}

// seedScopes writes one grant per non-admin role: the manager row is all-NULL
// (deliberate see-everything), the caseworker only sees their own records and
// the fundraiser is limited to donor account types.
func seedScopes(ctx context.Context, db *sql.DB, userIDs map[string]int64) error {
	upsert := func(userID int64, accountTypes interface{}, createdByOnly bool) error {
		_, err := db.ExecContext(ctx, `
			INSERT INTO user_scopes (user_id, account_ids, contact_ids, account_types, created_by_only)
			VALUES ($1, NULL, NULL, $2, $3)
			ON CONFLICT (user_id) DO UPDATE SET account_types = EXCLUDED.account_types,
				created_by_only = EXCLUDED.created_by_only, updated_at = now()`,
			userID, accountTypes, createdByOnly)
		return err
	}

	if err := upsert(userIDs["manager"], nil, false); err != nil {
		return err
	}
	if err := upsert(userIDs["caseworker"], nil, true); err != nil {
		return err
	}
	return upsert(userIDs["fundraiser"], pq.Array([]string{"household", "corporate", "foundation"}), false)
}

func seedRecords(ctx context.Context, db *sql.DB, userIDs map[string]int64) error {
	admin := userIDs["admin"]
	caseworker := userIDs["caseworker"]
	fundraiser := userIDs["fundraiser"]

	var riverside, marlow, brightPath, helixCorp int64
	accountRows := []struct {
		name, typ, city, state string
		createdBy              int64
		out                    *int64
	}{
		{"Riverside Family", "household", "Portland", "OR", fundraiser, &riverside},
		{"Marlow Household", "household", "Eugene", "OR", caseworker, &marlow},
		{"BrightPath Foundation", "foundation", "Seattle", "WA", admin, &brightPath},
		{"Helix Corp Giving", "corporate", "Boise", "ID", fundraiser, &helixCorp},
	}
	for _, a := range accountRows {
		if err := db.QueryRowContext(ctx, `
			INSERT INTO accounts (name, type, city, state, created_by)
			VALUES ($1, $2, $3, $4, $5) RETURNING id`,
			a.name, a.typ, a.city, a.state, a.createdBy).Scan(a.out); err != nil {
			return err
		}
	}

	var june, omar, priya, tessa int64
	contactRows := []struct {
		accountID   int64
		first, last string
		email       string
		createdBy   int64
		out         *int64
	}{
		{riverside, "June", "Rivers", "june@riverside.example", fundraiser, &june},
		{marlow, "Omar", "Marlow", "omar@marlow.example", caseworker, &omar},
		{brightPath, "Priya", "Nair", "priya@brightpath.example", admin, &priya},
		{helixCorp, "Tessa", "Lund", "tessa@helix.example", fundraiser, &tessa},
	}
	for _, c := range contactRows {
		if err := db.QueryRowContext(ctx, `
			INSERT INTO contacts (account_id, first_name, last_name, email, created_by)
			VALUES ($1, $2, $3, $4, $5) RETURNING id`,
			c.accountID, c.first, c.last, c.email, c.createdBy).Scan(c.out); err != nil {
			return err
		}
	}

	donationRows := []struct {
		accountID, contactID int64
		amount, fee          float64
		method, campaign     string
		createdBy            int64
	}{
		{riverside, june, 250.00, 7.55, "card", "spring_appeal", fundraiser},
		{riverside, june, 100.00, 3.20, "card", "spring_appeal", fundraiser},
		{brightPath, priya, 5000.00, 0, "transfer", "capital_fund", admin},
		{helixCorp, tessa, 1500.00, 0, "check", "matching_gifts", fundraiser},
		{marlow, omar, 40.00, 1.46, "card", "", caseworker},
	}
	for _, d := range donationRows {
		if _, err := db.ExecContext(ctx, `
			INSERT INTO donations (account_id, contact_id, amount, fee, method, campaign, received_at, created_by)
			VALUES ($1, $2, $3, $4, $5, $6, now() - interval '12 days', $7)`,
			d.accountID, d.contactID, d.amount, d.fee, d.method, d.campaign, d.createdBy); err != nil {
			return err
		}
	}

	if _, err := db.ExecContext(ctx, `
		INSERT INTO volunteers (contact_id, status, skills, hours_logged, started_on, created_by)
		VALUES ($1, 'active', 'food bank, driving', 24.5, current_date - 90, $2),
		       ($3, 'prospect', 'tutoring', 0, NULL, $4)`,
		june, fundraiser, omar, caseworker); err != nil {
		return err
	}

	if _, err := db.ExecContext(ctx, `
		INSERT INTO cases (account_id, contact_id, subject, status, priority, created_by)
		VALUES ($1, $2, 'Housing assistance intake', 'open', 'high', $3),
		       ($1, $2, 'Utility bill support', 'in_progress', 'normal', $3),
		       ($4, $5, 'Benefits paperwork review', 'open', 'normal', $3)`,
		marlow, omar, caseworker, riverside, june); err != nil {
		return err
	}

	if _, err := db.ExecContext(ctx, `
		INSERT INTO meetings (account_id, contact_id, subject, location, starts_at, ends_at, organizer_id, created_by)
		VALUES ($1, $2, 'Quarterly giving review', 'Main office', now() + interval '3 days', now() + interval '3 days 1 hour', $3, $3),
		       ($4, $5, 'Case check-in', 'Phone', now() + interval '1 day', NULL, $6, $6)`,
		brightPath, priya, fundraiser, marlow, omar, caseworker); err != nil {
		return err
	}

	if _, err := db.ExecContext(ctx, `
		INSERT INTO pages (slug, title, body, status, published_at, author_id)
		VALUES ('about-us', 'About Us', 'We help neighbors in need.', 'published', now(), $1)
		ON CONFLICT (slug) DO NOTHING`, admin); err != nil {
		return err
	}

	_, err := db.ExecContext(ctx, `
		INSERT INTO settings (key, value, updated_by)
		VALUES ('general.org_name', '"Northwest Helpers"', $1),
		       ('donations.receipt_footer', '"Thank you for your generosity."', $1)
		ON CONFLICT (key) DO NOTHING`, admin)
	return err
}

func main() {
	app := fx.New(
		fx.Provide(
			config.LoadConfig,
			database.NewDatabase,
			logger.NewLogger,
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		fx.Invoke(Seed),
	)

	app.Run()
}
