// Package infra contains technical adapters such as loggers, metric
// sinks and the MQTT telemetry publisher. These packages should depend
// only on the interfaces defined in the core packages.
package infra
