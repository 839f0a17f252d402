// ================== internal/database/firestore.go ==================
package database

import (
	"context"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

type Firestore struct {
	App    *firebase.App
	Client *firestore.Client
	Auth   *fbauth.Client
}

func Connect(ctx context.Context, projectID, credentialsFile string) (*Firestore, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	var conf *firebase.Config
	if projectID != "" {
		conf = &firebase.Config{ProjectID: projectID}
	}

	app, err := firebase.NewApp(ctx, conf, opts...)
	if err != nil {
		return nil, err
	}

	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, err
	}

	authClient, err := app.Auth(ctx)
	if err != nil {
		client.Close()
		return nil, err
	}

	return &Firestore{
		App:    app,
		Client: client,
		Auth:   authClient,
	}, nil
}

func (f *Firestore) Close() error {
	return f.Client.Close()
}
