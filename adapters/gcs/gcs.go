// Package gcs probes a Google Cloud Storage bucket.
package gcs

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/jonwraymond/healthops/probe"
)

// Kind is the configuration kind of this adapter.
const Kind = "gcs"

// Modes lists the creation modes Factory accepts.
var Modes = []probe.ModeKind{probe.KindRegistry, probe.KindDefaultCredentials, probe.KindAccountKey}

// Params lists the parameters a gcs check reads. bucket is required;
// anonymous=true skips authentication.
var Params = []string{"bucket", "anonymous"}

// New creates a check that reads the attributes of the bucket parameter.
func New(name string, source probe.OptionsSource, opts ...probe.Option) *probe.Check[*storage.Client] {
	opts = append([]probe.Option{probe.WithKind(Kind), probe.WithModes(Modes...), probe.WithParams("bucket")}, opts...)
	return probe.New(name, source, Factory, Probe, opts...)
}

// Factory builds a storage client against the service URI. AccountKey mode
// takes a service account JSON key; DefaultCredentials uses Application
// Default Credentials unless the anonymous parameter is true.
func Factory(ctx context.Context, opts *probe.Options) (*storage.Client, error) {
	var copts []option.ClientOption

	switch m := opts.Mode.(type) {
	case probe.DefaultCredentials:
		copts = append(copts, option.WithEndpoint(m.ServiceURI))
		if anonymous, _ := strconv.ParseBool(opts.Param("anonymous")); anonymous {
			copts = append(copts, option.WithoutAuthentication())
		}
	case probe.AccountKey:
		copts = append(copts,
			option.WithEndpoint(m.ServiceURI),
			option.WithCredentialsJSON([]byte(m.AccountKey)),
		)
	default:
		return nil, probe.Unsupported(opts.Mode)
	}

	client, err := storage.NewClient(ctx, copts...)
	if err != nil {
		return nil, fmt.Errorf("gcs: create client: %w", err)
	}
	return client, nil
}

// Probe reads the bucket attributes.
func Probe(ctx context.Context, client *storage.Client, opts *probe.Options) (probe.Verdict, error) {
	bucket := opts.Param("bucket")

	attrs, err := client.Bucket(bucket).Attrs(ctx)
	switch {
	case errors.Is(err, storage.ErrBucketNotExist):
		return probe.Fail(fmt.Sprintf("Bucket `%s` does not exist.", bucket)), nil
	case err != nil:
		return probe.Verdict{}, fmt.Errorf("gcs: bucket attrs: %w", err)
	}

	return probe.Pass().WithDetails(map[string]any{
		"bucket":        attrs.Name,
		"location":      attrs.Location,
		"storage_class": attrs.StorageClass,
	}), nil
}
