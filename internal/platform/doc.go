// Package platform resolves which execution context a run is operating in.
//
// Three contexts are supported: [GitHub] (GitHub Actions), [Bitbucket]
// (Bitbucket Pipelines) and [Local] (a developer's working tree). [Resolve]
// reads the selector and the credential environment for the chosen context
// and fails with a [*ConfigurationError] naming every missing variable before
// any network or filesystem access happens.
//
// The package also owns the error taxonomy shared by the forge clients:
// [RemoteFetchError] and [RemoteDeliveryError].
package platform
