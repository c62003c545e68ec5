package handler

import (
	"database/sql"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"notaryapi/internal/model"
	"notaryapi/internal/repository"
	"notaryapi/internal/service"
)

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Keep handlers minimal and free of business logic.
func RegisterRoutes(app *fiber.App, db *sql.DB, svc service.NotarizationService, journal repository.NotarizationJournal, metrics prometheus.Gatherer) {
	// Serve OpenAPI spec and Swagger UI
	app.Get("/openapi.yaml", func(c *fiber.Ctx) error {
		c.Type("yaml")
		return c.SendFile("openapi.yaml")
	})
	app.Get("/docs", func(c *fiber.Ctx) error {
		html := `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>API Docs</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    window.ui = SwaggerUIBundle({
      url: '/openapi.yaml',
      dom_id: '#swagger-ui',
      presets: [SwaggerUIBundle.presets.apis],
      layout: 'BaseLayout'
    });
  </script>
</body>
</html>`
		return c.Type("html").SendString(html)
	})

	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	if metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(metrics, promhttp.HandlerOpts{})))
	}

	// One route group per notarization scenario; the scenario tags the
	// request, everything downstream is shared.
	scenarios := []model.Scenario{model.ScenarioSolo, model.ScenarioMultisig, model.ScenarioExternalSigner}
	for i, sc := range scenarios {
		g := app.Group(fmt.Sprintf("/scenario%d", i+1))
		g.Post("/notarize", NotarizeDocument(svc, sc))
		g.Post("/query", QueryNotarization(svc))
	}

	// Storage browser
	app.Get("/storage/:storage_id/list", ListStorage(svc))
	app.Get("/storage/:storage_id/download/*", DownloadItem(svc))
	app.Post("/storage/rename", RenameItem(svc))
	app.Post("/storage/move", MoveItem(svc))
	app.Post("/storage/delete", DeleteItem(svc))

	// Audit journal is optional
	if journal != nil {
		app.Get("/notarizations", ListNotarizations(journal))
		app.Get("/notarizations/:storage_id/:file_name", NotarizationHistory(journal))
	}
}
