package platform

import (
	"fmt"
	"strings"
)

// ConfigurationError reports missing or invalid inputs. It is always raised
// before any I/O.
type ConfigurationError struct {
	Platform Platform
	Missing  []string
	Reason   string
}

func (e *ConfigurationError) Error() string {
	var b strings.Builder
	b.WriteString("configuration error")
	if e.Platform != "" {
		fmt.Fprintf(&b, " (%s)", e.Platform)
	}
	if len(e.Missing) > 0 {
		fmt.Fprintf(&b, ": missing required environment: %s", strings.Join(e.Missing, ", "))
	}
	if e.Reason != "" {
		fmt.Fprintf(&b, ": %s", e.Reason)
	}
	return b.String()
}

// UnsupportedPlatformError reports a selector outside the supported set.
type UnsupportedPlatformError struct {
	Value string
}

func (e *UnsupportedPlatformError) Error() string {
	names := make([]string, len(All))
	for i, p := range All {
		names[i] = string(p)
	}
	return fmt.Sprintf("unsupported platform %q (expected one of: %s)", e.Value, strings.Join(names, ", "))
}

// RemoteFetchError reports a failed diff fetch against a forge API.
// StatusCode is zero for transport failures.
type RemoteFetchError struct {
	Platform   Platform
	Call       string
	StatusCode int
	Err        error
}

func (e *RemoteFetchError) Error() string {
	return remoteMessage("fetch", e.Platform, e.Call, e.StatusCode, e.Err)
}

func (e *RemoteFetchError) Unwrap() error { return e.Err }

// RemoteDeliveryError reports a failed comment post against a forge API.
type RemoteDeliveryError struct {
	Platform   Platform
	Call       string
	StatusCode int
	Err        error
}

func (e *RemoteDeliveryError) Error() string {
	return remoteMessage("delivery", e.Platform, e.Call, e.StatusCode, e.Err)
}

func (e *RemoteDeliveryError) Unwrap() error { return e.Err }

func remoteMessage(kind string, p Platform, call string, status int, err error) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s failed: %s", p, kind, call)
	if status != 0 {
		fmt.Fprintf(&b, " (status %d)", status)
	}
	if err != nil {
		fmt.Fprintf(&b, ": %v", err)
	}
	return b.String()
}
