package handler

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"notaryapi/internal/model"
	"notaryapi/internal/repository"
	"notaryapi/internal/service"
)

// HealthCheck reports readiness. When a database is configured it is pinged
// with a short timeout; without one the service is storage-only and healthy
// by construction.
func HealthCheck(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if db != nil {
			ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
			}
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe is a plain liveness endpoint.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// NotarizeDocument handles a notarize request for one scenario. The common
// body fields are shared across scenarios; scenario-specific signer fields
// are parsed from the same body.
func NotarizeDocument(svc service.NotarizationService, scenario model.Scenario) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req model.NotarizeRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "cannot parse request body")
		}
		if req.DocumentBase64 == "" {
			return writeError(c, fiber.StatusBadRequest, "DOCUMENT_REQUIRED", "document_base64 is required")
		}

		req.Scenario = scenario
		switch scenario {
		case model.ScenarioMultisig:
			var p model.MultisigParams
			if err := c.BodyParser(&p); err != nil {
				return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "cannot parse request body")
			}
			req.Multisig = &p
		case model.ScenarioExternalSigner:
			var p model.ExternalSignerParams
			if err := c.BodyParser(&p); err != nil {
				return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "cannot parse request body")
			}
			req.ExternalSigner = &p
		}

		summary, err := svc.Notarize(c.UserContext(), req)
		if err != nil {
			return serviceError(c, err)
		}
		return c.Status(fiber.StatusOK).JSON(summary)
	}
}

// QueryNotarization returns the stored metadata record for one identity.
func QueryNotarization(svc service.NotarizationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var q model.QueryRequest
		if err := c.BodyParser(&q); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "cannot parse request body")
		}

		record, err := svc.Query(c.UserContext(), q)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(record)
	}
}

// ListStorage returns every record in a storage subtree keyed by relative path.
func ListStorage(svc service.NotarizationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		out, err := svc.ListStorage(c.UserContext(), c.Params("storage_id"))
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(out)
	}
}

// DownloadItem streams a document, or a zip archive when the path addresses
// a folder.
func DownloadItem(svc service.NotarizationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := svc.Download(c.UserContext(), c.Params("storage_id"), c.Params("*"))
		if err != nil {
			return serviceError(c, err)
		}

		c.Set(fiber.HeaderContentType, res.ContentType)
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+res.FileName+`"`)
		// fasthttp closes the stream after the response is written.
		return c.SendStream(res.Content, int(res.Size))
	}
}

type renameBody struct {
	StorageID string `json:"storage_id"`
	Path      string `json:"path"`
	NewName   string `json:"new_name"`
}

// RenameItem changes the base name of a file or folder.
func RenameItem(svc service.NotarizationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body renameBody
		if err := c.BodyParser(&body); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "cannot parse request body")
		}
		if err := svc.Rename(c.UserContext(), body.StorageID, body.Path, body.NewName); err != nil {
			return serviceError(c, err)
		}
		return c.JSON(fiber.Map{"success": true})
	}
}

type moveBody struct {
	StorageID   string `json:"storage_id"`
	Path        string `json:"path"`
	Destination string `json:"destination"`
}

// MoveItem relocates a file or folder into another folder of the same subtree.
func MoveItem(svc service.NotarizationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body moveBody
		if err := c.BodyParser(&body); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "cannot parse request body")
		}
		if err := svc.Move(c.UserContext(), body.StorageID, body.Path, body.Destination); err != nil {
			return serviceError(c, err)
		}
		return c.JSON(fiber.Map{"success": true})
	}
}

type deleteBody struct {
	StorageID string `json:"storage_id"`
	Path      string `json:"path"`
	Recursive bool   `json:"recursive"`
}

// DeleteItem removes a document with its sidecar, or a folder when recursive.
func DeleteItem(svc service.NotarizationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body deleteBody
		if err := c.BodyParser(&body); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "cannot parse request body")
		}
		if err := svc.Delete(c.UserContext(), body.StorageID, body.Path, body.Recursive); err != nil {
			return serviceError(c, err)
		}
		return c.JSON(fiber.Map{"success": true})
	}
}

// ListNotarizations pages through the audit journal, newest first.
func ListNotarizations(journal repository.NotarizationJournal) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, err := strconv.Atoi(c.Query("limit", "10"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		offset, err := strconv.Atoi(c.Query("offset", "0"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		}

		res, err := journal.List(c.UserContext(), repository.PageQuery{Limit: limit, Offset: offset})
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(res)
	}
}

// NotarizationHistory returns every journal entry recorded for one document
// identity, newest first. Repeated ingests of the same identity produce one
// entry each, so this is the overwrite history the sidecar cannot keep.
func NotarizationHistory(journal repository.NotarizationJournal) fiber.Handler {
	return func(c *fiber.Ctx) error {
		entries, err := journal.FindByIdentity(c.UserContext(), c.Params("storage_id"), c.Params("file_name"))
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		if len(entries) == 0 {
			return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "no notarizations recorded for this identity")
		}
		return c.JSON(entries)
	}
}
