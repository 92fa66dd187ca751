package azure

import (
	"net/url"
	"strings"
)

// Address identifies a single blob.
type Address struct {
	Account   string
	Container string
	// BlobName may contain '/' and is empty when the URL points at a container.
	BlobName string
}

func (a Address) String() string {
	return a.Account + "/" + a.Container + "/" + a.BlobName
}

// ParseAddress derives an Address from u, e.g.
//
//	https://myacct.blob.core.windows.net/container1/folder/file.txt
//
// gives account "myacct", container "container1" and blob "folder/file.txt".
// The "."+blobStorageURL suffix is trimmed from the host without checking it
// was there: a host lacking it is used verbatim as the account name.
func ParseAddress(u *url.URL, blobStorageURL string) (Address, error) {
	if u == nil {
		return Address{}, &InvalidURLError{Err: ErrNoHost}
	}

	host := u.Hostname()
	if host == "" {
		return Address{}, &InvalidURLError{URL: u.String(), Err: ErrNoHost}
	}

	// IPv6 literals keep their brackets, as in the URL.
	if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}

	if u.Opaque != "" {
		return Address{}, &InvalidURLError{URL: u.String(), Err: ErrNoPathSegments}
	}

	segments := strings.Split(strings.TrimPrefix(u.Path, "/"), "/")
	if segments[0] == "" {
		return Address{}, &InvalidURLError{URL: u.String(), Err: ErrNoContainer}
	}

	return Address{
		Account:   accountName(host, blobStorageURL),
		Container: segments[0],
		BlobName:  strings.Join(segments[1:], "/"),
	}, nil
}

// accountName strips every trailing occurrence of the domain suffix.
func accountName(host, blobStorageURL string) string {
	if blobStorageURL == "" {
		return host
	}

	suffix := "." + blobStorageURL
	for strings.HasSuffix(host, suffix) {
		host = strings.TrimSuffix(host, suffix)
	}

	return host
}
