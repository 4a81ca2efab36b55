//go:build !(darwin || linux || windows)

package openvr

import "fmt"

// DefaultLibrary is empty on platforms the runtime does not ship for.
const DefaultLibrary = ""

// Client is unavailable on this platform; every Init fails.
type Client struct{ library string }

func NewClient(library string) *Client { return &Client{library: library} }

func (c *Client) Library() string { return c.library }

func (c *Client) Init(ApplicationType) error {
	return fmt.Errorf("%w: unsupported platform", ErrLibraryNotFound)
}

func (c *Client) IsApplicationInstalled(string) bool { return false }

func (c *Client) AddApplicationManifest(string, bool) error { return ErrNotInitialized }

func (c *Client) SetApplicationAutoLaunch(string, bool) error { return ErrNotInitialized }

func (c *Client) PollNextEvent() (Event, bool, error) { return Event{}, false, ErrNotInitialized }

func (c *Client) AcknowledgeQuitExiting() {}

func (c *Client) Shutdown() {}
