package firebase

import (
	"context"
	"fmt"
	"os"

	"cloud.google.com/go/firestore"
	fbapp "firebase.google.com/go/v4"
	"google.golang.org/api/option"

	"furiousrepair/pkg/logger"
)

type Options struct {
	ProjectID       string
	CredentialsJSON string
	CredentialsPath string
}

// NewFirestoreClient initializes the Firebase app and returns its Firestore
// client. Inline JSON credentials win over a file path; with neither set the
// client falls back to application default credentials, which also honours
// FIRESTORE_EMULATOR_HOST.
func NewFirestoreClient(ctx context.Context, opts Options) (*firestore.Client, error) {
	var clientOpts []option.ClientOption

	switch {
	case opts.CredentialsJSON != "":
		logger.Info("Using Firebase service account from environment variable")
		clientOpts = append(clientOpts, option.WithCredentialsJSON([]byte(opts.CredentialsJSON)))
	case opts.CredentialsPath != "":
		if _, err := os.Stat(opts.CredentialsPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("service account file does not exist: %s", opts.CredentialsPath)
		}
		logger.Info("Using Firebase service account from file: %s", opts.CredentialsPath)
		clientOpts = append(clientOpts, option.WithCredentialsFile(opts.CredentialsPath))
	default:
		logger.Info("Using application default credentials for Firebase")
	}

	app, err := fbapp.NewApp(ctx, &fbapp.Config{ProjectID: opts.ProjectID}, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("initialize firebase: %w", err)
	}

	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("create firestore client: %w", err)
	}
	return client, nil
}
