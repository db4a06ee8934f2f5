// Package azureblob probes an Azure Blob Storage account.
package azureblob

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"

	"github.com/jonwraymond/healthops/probe"
)

// Kind is the configuration kind of this adapter.
const Kind = "azureblob"

// Modes lists the creation modes Factory accepts.
var Modes = []probe.ModeKind{
	probe.KindRegistry,
	probe.KindConnectionString,
	probe.KindDefaultCredentials,
	probe.KindSharedKey,
	probe.KindSasToken,
	probe.KindClientSecret,
}

// Params lists the optional parameters. container names a container that
// must exist.
var Params = []string{"container"}

// New creates a check. With the container parameter the probe reads that
// container's properties; otherwise it lists one container.
func New(name string, source probe.OptionsSource, opts ...probe.Option) *probe.Check[*azblob.Client] {
	opts = append([]probe.Option{probe.WithKind(Kind), probe.WithModes(Modes...)}, opts...)
	return probe.New(name, source, Factory, Probe, opts...)
}

// Factory builds a blob service client. It makes no network calls.
func Factory(ctx context.Context, opts *probe.Options) (*azblob.Client, error) {
	co := clientOptions()

	switch m := opts.Mode.(type) {
	case probe.ConnectionString:
		return azblob.NewClientFromConnectionString(m.ConnectionString, co)

	case probe.DefaultCredentials:
		cred, err := azidentity.NewDefaultAzureCredential(nil)
		if err != nil {
			return nil, fmt.Errorf("azureblob: default credential: %w", err)
		}
		return azblob.NewClient(m.ServiceURI, cred, co)

	case probe.SharedKey:
		cred, err := azblob.NewSharedKeyCredential(m.AccountName, m.AccountKey)
		if err != nil {
			return nil, fmt.Errorf("azureblob: shared key: %w", err)
		}
		return azblob.NewClientWithSharedKeyCredential(m.ServiceURI, cred, co)

	case probe.SasToken:
		return azblob.NewClientWithNoCredential(WithSAS(m.ServiceURI, m.Token), co)

	case probe.ClientSecret:
		cred, err := azidentity.NewClientSecretCredential(m.TenantID, m.ClientID, m.ClientSecret, nil)
		if err != nil {
			return nil, fmt.Errorf("azureblob: client secret credential: %w", err)
		}
		return azblob.NewClient(m.ServiceURI, cred, co)

	default:
		return nil, probe.Unsupported(opts.Mode)
	}
}

// Probe checks the configured container, or that the account answers a
// one-item container listing.
func Probe(ctx context.Context, client *azblob.Client, opts *probe.Options) (probe.Verdict, error) {
	if name := opts.Param("container"); name != "" {
		props, err := client.ServiceClient().NewContainerClient(name).GetProperties(ctx, nil)
		switch {
		case bloberror.HasCode(err, bloberror.ContainerNotFound):
			return probe.Fail(fmt.Sprintf("Container `%s` does not exist.", name)), nil
		case err != nil:
			return denied(err)
		}

		details := map[string]any{"container": name}
		if props.LastModified != nil {
			details["last_modified"] = props.LastModified.UTC()
		}
		return probe.Pass().WithDetails(details), nil
	}

	pager := client.NewListContainersPager(&azblob.ListContainersOptions{MaxResults: to.Ptr[int32](1)})
	if _, err := pager.NextPage(ctx); err != nil {
		return denied(err)
	}
	return probe.Pass(), nil
}

// WithSAS appends a SAS token to a service URI.
func WithSAS(serviceURI, token string) string {
	token = strings.TrimPrefix(token, "?")
	sep := "?"
	if strings.Contains(serviceURI, "?") {
		sep = "&"
	}
	return serviceURI + sep + token
}

// denied turns authorization failures into a failing verdict. Other errors
// are returned as they are.
func denied(err error) (probe.Verdict, error) {
	var respErr *azcore.ResponseError
	if errors.As(err, &respErr) && respErr.StatusCode == http.StatusForbidden {
		return probe.Fail("Access denied."), nil
	}
	return probe.Verdict{}, fmt.Errorf("azureblob: %w", err)
}

// clientOptions turns off SDK retries; the probe timeout bounds each run.
func clientOptions() *azblob.ClientOptions {
	return &azblob.ClientOptions{
		ClientOptions: azcore.ClientOptions{
			Retry: policy.RetryOptions{MaxRetries: -1},
		},
	}
}
