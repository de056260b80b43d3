package docker

import "time"

const (
	ContainerOpTimeout = 30 * time.Second
	PingTimeout        = 5 * time.Second
)
