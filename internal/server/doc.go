// Package server serves lnk over HTTP.
//
// # Routes
//
//   - GET /                   - Link creation form
//   - POST /                  - Create a link from the form (fields uri, slug, token)
//   - GET /styles.css         - Stylesheet
//   - GET /info/{slug}        - Short link, target and QR code
//   - GET /{slug}/qr          - Same as /info/{slug}
//   - GET /{slug}             - 307 redirect to the stored target
//   - GET /-/healthy          - Liveness check
//   - GET /-/ready            - Readiness check (pings the store)
//   - POST /-/api/links       - Create a link (JSON, bearer token)
//   - GET /-/api/links/{slug} - Fetch a link record (JSON, bearer token)
//
// Service routes sit under /-/ since '-' is not a slug character, so they can
// never shadow a stored link.
//
// # Fatal errors
//
// A store read or write failure is answered with 500 and then reported on the
// server's fatal channel. Run returns that error and the process exits; there
// is no degraded mode.
//
// # Lifecycle
//
//	srv, err := server.New(cfg, logger)
//	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
//	err = srv.Run(ctx)
//
// Run closes the store on return.
package server
