// Package fabric fetches launch profiles from the fabric meta service
package fabric

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/xcraft/xcraft/internals/minecraft"
)

// MetaURL is the fabric meta api
const MetaURL = "https://meta.fabricmc.net"

// ErrNoFabricLoader is returned if the meta service does not know the loader/minecraft combination
var ErrNoFabricLoader = errors.New("could not find fabric loader for the given minecraft version")

// Client for the fabric meta api
type Client struct {
	HTTP    *http.Client
	BaseURL string
}

// New returns a client for the default meta api
func New(client *http.Client) *Client {
	if client == nil {
		client = http.DefaultClient
	}
	return &Client{HTTP: client, BaseURL: MetaURL}
}

// ProfileURL returns the url of the launch profile
func (c *Client) ProfileURL(mcVersion string, loader string) string {
	return fmt.Sprintf(
		"%s/v2/versions/loader/%s/%s/profile/json",
		c.BaseURL,
		url.PathEscape(mcVersion),
		url.PathEscape(loader),
	)
}

// FetchProfile returns the version fragment for the loader version.
// Fabric has no installer, the profile is all there is
func (c *Client) FetchProfile(ctx context.Context, mcVersion string, loader string) (*minecraft.LaunchManifest, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.ProfileURL(mcVersion, loader), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode == http.StatusNotFound || res.StatusCode == http.StatusBadRequest:
		return nil, fmt.Errorf("%w: %s / %s", ErrNoFabricLoader, loader, mcVersion)
	case res.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("fabric meta API did respond with unexpected status %s", res.Status)
	}

	buf, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}

	manifest, err := minecraft.ParseLaunchManifest(buf)
	if err != nil {
		if errors.Is(err, minecraft.ErrMalformedDescriptor) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", minecraft.ErrMalformedDescriptor, err)
	}
	return manifest, nil
}
