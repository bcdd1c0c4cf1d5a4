/*
Package naas generates polite refusals ("No As A Service").

A caller describes what they were asked to do and picks a tone. The engine
builds a prompt, relays it to a generative model, and returns the response
together with a tact score from 0 to 100.

# Concept

Each session is driven by a lifecycle controller (pkg/lifecycle) that moves
between Idle, Loading, Success and Error. The controller never talks to the
network directly: it receives a ports.Relay, and optional host capabilities
(speech output, speech input, clipboard) through interfaces that are probed
once when the controller is built.

# Usage

	relay, err := gemini.New(ctx, gemini.Config{APIKey: key})
	if err != nil {
		log.Fatal(err)
	}

	engine := naas.New(relay)
	res, err := engine.Ask(ctx, "Help me move house on Saturday", "gentle")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(res.Response, res.Score)

Sessions persist across processes when the engine is given a store:

	engine := naas.New(relay, naas.WithStore(file.New(".naas/sessions")))
	s, err := engine.Open(ctx, "my-session")
	...
	s.SetInput(ctx, "Cover my shift")
	snap, err := s.Submit(ctx)

# Surfaces

The same lifecycle is exposed over HTTP (pkg/adapters/http), as MCP tools
(pkg/adapters/mcp) and through the naas command line (cmd/naas).
*/
package naas
