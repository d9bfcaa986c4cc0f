package handler

import (
	"net/url"
)

// UploadsRoute is the public mount point for stored files.
const UploadsRoute = "/uploads"

// PublicURL builds the address a client uses to fetch a stored file. Only
// the mount point and file name are exposed, never the on-disk path.
func PublicURL(scheme, host, filename string) string {
	return scheme + "://" + host + UploadsRoute + "/" + url.PathEscape(filename)
}
