package http

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/jhoicas/caja-pos-api/internal/application/dto"
	"github.com/jhoicas/caja-pos-api/internal/domain"
	"github.com/jhoicas/caja-pos-api/internal/domain/entity"
	"github.com/jhoicas/caja-pos-api/internal/domain/repository"
)

// HeaderIdempotencyKey reintentos del mismo POST con la misma clave devuelven la respuesta original.
const HeaderIdempotencyKey = "Idempotency-Key"

// idempotencyNamespace espacio UUIDv5 para derivar claves de caché.
var idempotencyNamespace = uuid.MustParse("6f1d3b0e-7c2a-4e8b-9a55-3c1f2d4e5a60")

// pendingLease vigencia de una reserva en curso; si el proceso cae, la clave se libera sola.
const pendingLease = 2 * time.Minute

// IdempotencyCache respuestas de POST por (empresa, usuario, clave) durante ttl.
// Persistidas en el repositorio: compartidas entre réplicas y reinicios.
type IdempotencyCache struct {
	repo repository.IdempotencyRepository
	ttl  time.Duration
	now  func() time.Time
}

// NewIdempotencyCache ttl <= 0 usa 24 horas.
func NewIdempotencyCache(repo repository.IdempotencyRepository, ttl time.Duration) *IdempotencyCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &IdempotencyCache{repo: repo, ttl: ttl, now: time.Now}
}

func cacheKey(companyID, userID, key string) uuid.UUID {
	return uuid.NewSHA1(idempotencyNamespace, []byte(companyID+"|"+userID+"|"+key))
}

func requestHash(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

func requestInProgress(c *fiber.Ctx) error {
	return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
		Code:    "REQUEST_IN_PROGRESS",
		Message: "ya hay una petición en curso con esta Idempotency-Key",
	})
}

// Handler middleware. Sin cabecera Idempotency-Key la petición pasa sin caché.
func (ic *IdempotencyCache) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.Get(HeaderIdempotencyKey)
		if key == "" {
			return c.Next()
		}
		companyID, userID := GetTenant(c).CompanyID, GetUserID(c)
		now := ic.now()
		rec := &entity.IdempotencyKey{
			Key:         cacheKey(companyID, userID, key).String(),
			CompanyID:   companyID,
			UserID:      userID,
			Endpoint:    c.Method() + " " + c.Path(),
			RequestHash: requestHash(c.Body()),
			CreatedAt:   now,
			ExpiresAt:   now.Add(pendingLease),
		}

		prev, err := ic.repo.Reserve(c.UserContext(), rec)
		if err != nil {
			if errors.Is(err, domain.ErrConflict) {
				return requestInProgress(c)
			}
			return respondError(c, err)
		}
		if prev != nil {
			if prev.RequestHash != rec.RequestHash {
				return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{
					Code:    "IDEMPOTENCY_KEY_REUSED",
					Message: "la Idempotency-Key ya se usó con otro cuerpo",
				})
			}
			if prev.Pending {
				return requestInProgress(c)
			}
			c.Set("Idempotent-Replay", "true")
			c.Set(fiber.HeaderContentType, prev.ContentType)
			return c.Status(prev.ResponseCode).Send(prev.ResponseBody)
		}

		err = c.Next()
		status := c.Response().StatusCode()
		// 5xx no se guarda: el cliente puede reintentar.
		if err != nil || status >= fiber.StatusInternalServerError {
			_ = ic.repo.Release(c.UserContext(), rec.Key)
			return err
		}
		rec.Pending = false
		rec.ResponseCode = status
		rec.ContentType = string(c.Response().Header.ContentType())
		rec.ResponseBody = append([]byte(nil), c.Response().Body()...)
		rec.ExpiresAt = ic.now().Add(ic.ttl)
		// si falla, la reserva vence tras pendingLease y el cliente puede reintentar
		_ = ic.repo.Complete(c.UserContext(), rec)
		return nil
	}
}
