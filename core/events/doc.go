// Package events defines the simulation events emitted on the event bus.
//
// Available event types:
//   - TickEvent: one applied simulation tick with its observation
//   - DeliveryEvent: a demand delivered by a vehicle
//   - EpisodeEvent: an episode finished, with its summary
package events
