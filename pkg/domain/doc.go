/*
Package domain contains the core domain models of naas.

It defines the vocabulary shared by the lifecycle controller and every adapter:
tones, lifecycle states, session snapshots, generation payloads and the side
effects the controller asks its host to perform. The package is kept free of
I/O and persistence.

# Key Entities

  - Tone: a label from a configured ToneSet, always valid once parsed.
  - Snapshot: the observable state of one lifecycle controller (input, retained
    result, last attempt, error message, generation counter).
  - Payload: the generation response in the upstream candidates/content/parts shape.
  - ActionRequest: a side effect the host should render or execute.
  - LifecycleHooks: callbacks for logging and metrics.
*/
package domain
