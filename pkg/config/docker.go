package config

import (
	"net/url"
	"os"
	"sync"
)

var (
	isDockerOnce   sync.Once
	isDockerResult bool
)

// IsRunningInDocker reports whether /.dockerenv exists. The result is cached.
func IsRunningInDocker() bool {
	isDockerOnce.Do(func() {
		_, err := os.Stat("/.dockerenv")
		isDockerResult = err == nil
	})
	return isDockerResult
}

func isLoopback(host string) bool {
	return host == "localhost" || host == "127.0.0.1" || host == "::1"
}

// ResolveHostForDocker maps loopback hosts to host.docker.internal when
// running inside a container, so a database on the host machine stays
// reachable with the same config file.
func ResolveHostForDocker(host string) string {
	if IsRunningInDocker() && isLoopback(host) {
		return "host.docker.internal"
	}
	return host
}

// ResolveEndpointForDocker applies ResolveHostForDocker to the host part of
// an endpoint URL such as a local MinIO address.
func ResolveEndpointForDocker(endpoint string) string {
	if endpoint == "" || !IsRunningInDocker() {
		return endpoint
	}
	u, err := url.Parse(endpoint)
	if err != nil || !isLoopback(u.Hostname()) {
		return endpoint
	}
	u.Host = "host.docker.internal"
	if port := u.Port(); port != "" {
		u.Host += ":" + port
	}
	return u.String()
}
