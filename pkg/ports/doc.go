/*
Package ports defines the driven ports (interfaces) of the naas lifecycle controller.

These interfaces decouple the core logic from external implementations, allowing
the controller to work with various relays, storage backends and host devices.

# Key Interfaces

  - Relay: forwards a prompt to the generation backend and returns its payload.
  - ActionDispatcher: executes the side effects the controller requests.
  - Speaker, Recognizer, Clipboard: optional host capabilities.
  - StateStore: persists session Snapshots.
  - PreferenceStore: persists small key-value preferences such as the Theme.
  - DistributedLocker: provides distributed locking for concurrent session access.
*/
package ports
