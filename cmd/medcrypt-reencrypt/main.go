// Command medcrypt-reencrypt rewrites every account's secrets tuple under
// the current profile shape and key. Run it after the profile composer
// changes shape: each account is hydrated (tolerating legacy encodings),
// recomposed and re-encrypted. Accounts are independent, so a partial run
// can simply be repeated.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/hengadev/errsx"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/carewise/medcrypt"
	"github.com/carewise/medcrypt/internal/datestr"
	"github.com/carewise/medcrypt/store"
)

func main() {
	dbPath := flag.String("db", "medrecords.db", "path to the SQLite database")
	kind := flag.String("kind", "", "limit to one account kind: user, professional or admin")
	dryRun := flag.Bool("dry-run", false, "hydrate and rebuild without writing")
	flag.Parse()

	logger := logrus.New()

	// Optional .env for local runs; deployments set real environment.
	_ = godotenv.Load()

	cipher, err := medcrypt.NewFromEnv(medcrypt.WithLogger(logger))
	if err != nil {
		logger.WithError(err).Fatal("failed to initialize cipher")
	}

	db, err := store.Open(*dbPath)
	if err != nil {
		logger.WithError(err).Fatal("failed to open database")
	}
	defer db.Close()

	kinds := []store.Kind{store.KindUser, store.KindProfessional, store.KindAdmin}
	if *kind != "" {
		kinds = []store.Kind{store.Kind(*kind)}
	}

	ctx := context.Background()
	var failures errsx.Map
	total := 0
	for _, k := range kinds {
		n, err := reencryptKind(ctx, logger, cipher, db, k, *dryRun, &failures)
		if err != nil {
			logger.WithError(err).WithField("kind", k).Fatal("re-encryption aborted")
		}
		total += n
	}

	if !failures.IsEmpty() {
		logger.WithField("failures", failures.AsError()).
			Error("some accounts could not be re-encrypted; they were left untouched")
		os.Exit(1)
	}
	logger.WithField("accounts", total).Info("re-encryption complete")
}

func reencryptKind(
	ctx context.Context,
	logger *logrus.Logger,
	cipher *medcrypt.Cipher,
	db *store.Store,
	kind store.Kind,
	dryRun bool,
	failures *errsx.Map,
) (int, error) {
	rows, err := db.ListAccounts(ctx, kind)
	if err != nil {
		return 0, err
	}
	logger.WithFields(logrus.Fields{"kind": kind, "accounts": len(rows)}).Info("re-encrypting")

	done := 0
	for _, row := range rows {
		id, _ := row["id"].(string)
		secrets, err := rebuild(cipher, kind, row)
		if err != nil {
			failures.Set(fmt.Sprintf("%s/%s", kind, id), err)
			continue
		}
		if secrets.EmailHash == "" {
			failures.Set(fmt.Sprintf("%s/%s", kind, id), fmt.Errorf("hydrated account has no email"))
			continue
		}
		if dryRun {
			done++
			continue
		}
		if err := db.SaveAccount(ctx, kind, id, secrets); err != nil {
			failures.Set(fmt.Sprintf("%s/%s", kind, id), err)
			continue
		}
		done++
	}
	return done, nil
}

// rebuild hydrates one stored row and regenerates its secrets tuple under
// the current profile shape.
func rebuild(cipher *medcrypt.Cipher, kind store.Kind, row map[string]any) (medcrypt.AccountSecrets, error) {
	switch kind {
	case store.KindUser:
		view := cipher.HydrateUser(row)
		fields := medcrypt.UserFields{
			FirstName:   deref(view.FirstName),
			LastName:    deref(view.LastName),
			Email:       deref(view.Email),
			Mobile:      deref(view.Mobile),
			Address:     deref(view.Address),
			DateOfBirth: deref(view.DateOfBirth),
		}
		if view.YearOfBirth != nil {
			fields.YearOfBirth = *view.YearOfBirth
		} else if year, ok := datestr.Year(deref(view.DateOfBirth)); ok {
			// Old rows predate the yearOfBirth field; backfill from the DOB.
			fields.YearOfBirth = year
		}
		// Single-name legacy rows have no first/last split; keep the joined
		// name in the first-name slot so it survives recomposition.
		if fields.FirstName == "" && fields.LastName == "" {
			fields.FirstName = deref(view.Name)
		}
		return cipher.BuildUserSecrets(fields)
	case store.KindProfessional:
		view := cipher.HydrateProfessional(row)
		return cipher.BuildProfessionalSecrets(medcrypt.ProfessionalFields{
			Name:    deref(view.Name),
			Email:   deref(view.Email),
			Mobile:  deref(view.Mobile),
			Address: deref(view.Address),
			Company: deref(view.Company),
		})
	case store.KindAdmin:
		view := cipher.HydrateAdmin(row)
		return cipher.BuildAdminSecrets(medcrypt.AdminFields{
			Name:    deref(view.Name),
			Email:   deref(view.Email),
			Mobile:  deref(view.Mobile),
			Address: deref(view.Address),
		})
	default:
		return medcrypt.AccountSecrets{}, fmt.Errorf("unknown account kind %q", kind)
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
