package metrics

// Config identifies the service on emitted instruments.
type Config struct {
	ServiceName string
	Environment string
}
