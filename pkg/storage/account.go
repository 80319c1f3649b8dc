package storage

import (
	"fmt"
	"strings"
)

// Account holds the storage account identity parsed from a connection string.
type Account struct {
	Name         string
	Key          string
	BlobEndpoint string
}

// ParseConnectionString extracts the account name, key, and blob endpoint from
// an Azure storage connection string. When no explicit BlobEndpoint is present,
// the endpoint is derived from the protocol, account name, and endpoint suffix.
func ParseConnectionString(conn string) (*Account, error) {
	parts := map[string]string{}
	for _, segment := range strings.Split(conn, ";") {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}

		k, v, found := strings.Cut(segment, "=")
		if !found {
			return nil, fmt.Errorf("malformed connection string segment: %q", segment)
		}
		parts[k] = v
	}

	account := &Account{
		Name: parts["AccountName"],
		Key:  parts["AccountKey"],
	}

	if account.Name == "" {
		return nil, fmt.Errorf("connection string missing AccountName")
	}
	if account.Key == "" {
		return nil, fmt.Errorf("connection string missing AccountKey")
	}

	if endpoint := parts["BlobEndpoint"]; endpoint != "" {
		account.BlobEndpoint = strings.TrimSuffix(endpoint, "/")
		return account, nil
	}

	protocol := parts["DefaultEndpointsProtocol"]
	if protocol == "" {
		protocol = "https"
	}

	suffix := parts["EndpointSuffix"]
	if suffix == "" {
		suffix = "core.windows.net"
	}

	account.BlobEndpoint = fmt.Sprintf("%s://%s.blob.%s", protocol, account.Name, suffix)
	return account, nil
}
