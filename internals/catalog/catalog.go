// Package catalog fetches the list of available minecraft versions and their descriptors
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/xcraft/xcraft/internals/minecraft"
	"golang.org/x/exp/slices"
)

// ManifestURL is the default location of the version manifest
const ManifestURL string = "https://launchermeta.mojang.com/mc/game/version_manifest.json"

var (
	// ErrCatalogUnavailable is returned when the catalog or a descriptor could not be fetched or decoded
	ErrCatalogUnavailable = errors.New("version catalog unavailable")
	// ErrVersionNotFound is returned when the requested version is not in the catalog
	ErrVersionNotFound = errors.New("version not found")
)

var (
	// TypeSnapshot is a snapshot release
	TypeSnapshot = "snapshot"
	// TypeRelease is a full "normal" release
	TypeRelease = "release"
	// TypeOldBeta is a "old_beta" release
	TypeOldBeta = "old_beta"
	// TypeOldAlpha is a "old_alpha" release
	TypeOldAlpha = "old_alpha"
)

// Version is a released minecraft version
type Version struct {
	ID              string `json:"id"`
	Type            string `json:"type"`
	URL             string `json:"url"`
	Time            string `json:"time"`
	ReleaseTime     string `json:"releaseTime"`
	Sha1            string `json:"sha1,omitempty"`
	ComplianceLevel int    `json:"complianceLevel,omitempty"`
}

// Catalog is the version manifest. Versions are ordered newest first
type Catalog struct {
	Latest struct {
		Release  string `json:"release"`
		Snapshot string `json:"snapshot"`
	} `json:"latest"`
	Versions []Version `json:"versions"`
}

// Find returns the version with the given id
func (c *Catalog) Find(id string) (*Version, error) {
	i := slices.IndexFunc(c.Versions, func(v Version) bool { return v.ID == id })
	if i == -1 {
		return nil, fmt.Errorf("%w: %s", ErrVersionNotFound, id)
	}
	return &c.Versions[i], nil
}

// Filter returns releases and the other version types that are enabled
func (c *Catalog) Filter(snapshots, beta, alpha bool) []Version {
	show := map[string]bool{
		TypeRelease:  true,
		TypeSnapshot: snapshots,
		TypeOldBeta:  beta,
		TypeOldAlpha: alpha,
	}
	filtered := make([]Version, 0, len(c.Versions))
	for _, v := range c.Versions {
		if show[v.Type] {
			filtered = append(filtered, v)
		}
	}
	return filtered
}

// LatestVersion returns the newest release (or snapshot)
func (c *Catalog) LatestVersion(snapshot bool) (*Version, error) {
	id := c.Latest.Release
	if snapshot && c.Latest.Snapshot != "" {
		id = c.Latest.Snapshot
	}
	return c.Find(id)
}

// Client fetches the catalog. It never retries, that is up to the caller
type Client struct {
	HTTP        *http.Client
	ManifestURL string
}

// New returns a client for the default manifest url
func New(client *http.Client) *Client {
	if client == nil {
		client = http.DefaultClient
	}
	return &Client{HTTP: client, ManifestURL: ManifestURL}
}

// FetchCatalog returns all available minecraft versions
func (c *Client) FetchCatalog(ctx context.Context) (*Catalog, error) {
	buf, err := c.get(ctx, c.ManifestURL)
	if err != nil {
		return nil, err
	}
	parsed := Catalog{}
	if err := json.Unmarshal(buf, &parsed); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCatalogUnavailable, err)
	}
	return &parsed, nil
}

// FetchDescriptor fetches the descriptor of the given version
func (c *Client) FetchDescriptor(ctx context.Context, v *Version) (*minecraft.LaunchManifest, error) {
	buf, err := c.get(ctx, v.URL)
	if err != nil {
		return nil, err
	}
	desc, err := minecraft.ParseLaunchManifest(buf)
	switch {
	case errors.Is(err, minecraft.ErrMalformedDescriptor):
		return nil, err
	case err != nil:
		return nil, fmt.Errorf("%w: %w", ErrCatalogUnavailable, err)
	}
	return desc, nil
}

// FindByName fetches the catalog and the descriptor of the version with the given id
func (c *Client) FindByName(ctx context.Context, id string) (*Version, *minecraft.LaunchManifest, error) {
	cat, err := c.FetchCatalog(ctx)
	if err != nil {
		return nil, nil, err
	}
	v, err := cat.Find(id)
	if err != nil {
		return nil, nil, err
	}
	desc, err := c.FetchDescriptor(ctx, v)
	if err != nil {
		return nil, nil, err
	}
	return v, desc, nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCatalogUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	res, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCatalogUnavailable, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s responded with %s", ErrCatalogUnavailable, url, res.Status)
	}
	buf, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCatalogUnavailable, err)
	}
	return buf, nil
}
