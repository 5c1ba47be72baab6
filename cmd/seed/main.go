// seed crea el usuario MASTER y una empresa de demostración con su sucursal y administrador.
// Opcionalmente carga un catálogo de productos desde un CSV exportado de Excel (ISO-8859-1 o UTF-8).
//
// Uso: go run ./cmd/seed [ruta/catalogo.csv]
// Columnas del CSV (separador ';'): sku;nombre;precio;costo;stock;iva
// Credenciales: SEED_MASTER_EMAIL, SEED_MASTER_PASSWORD, SEED_ADMIN_EMAIL, SEED_ADMIN_PASSWORD.
package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/caja-pos-api/internal/domain/entity"
	"github.com/jhoicas/caja-pos-api/internal/infrastructure/postgres"
	"github.com/jhoicas/caja-pos-api/pkg/config"
	"github.com/jhoicas/caja-pos-api/pkg/logger"
)

const (
	demoNIT  = "900123456-8"
	demoName = "Celulares Demo"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: "info"}).WithComponent("seed")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()
	if err := postgres.Migrate(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("migración del esquema")
	}

	users := postgres.NewUserRepository(pool)
	companies := postgres.NewCompanyRepository(pool)
	branches := postgres.NewBranchRepository(pool)
	products := postgres.NewProductRepository(pool)
	now := time.Now().UTC()
	taxRate := decimal.NewFromFloat(cfg.POS.DefaultTaxRate)

	if err := ensureUser(ctx, users, &entity.User{
		Email: env("SEED_MASTER_EMAIL", "master@caja-pos.local"),
		Name:  "Administrador de plataforma",
		Role:  entity.RoleMaster,
	}, env("SEED_MASTER_PASSWORD", "cambiar-esta-clave"), now); err != nil {
		log.Fatal().Err(err).Msg("usuario MASTER")
	}

	company, err := companies.GetByNIT(ctx, demoNIT)
	if err != nil {
		log.Fatal().Err(err).Msg("buscar empresa demo")
	}
	if company == nil {
		company = &entity.Company{
			ID:                 uuid.New().String(),
			Name:               demoName,
			NIT:                demoNIT,
			SubscriptionPlan:   entity.PlanPro,
			SubscriptionStatus: entity.SubscriptionActive,
			Config: entity.CompanyConfig{
				TaxRate:        &taxRate,
				CurrencySymbol: "$",
				InvoicePrefix:  cfg.POS.InvoicePrefix,
			},
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := companies.Create(ctx, company); err != nil {
			log.Fatal().Err(err).Msg("crear empresa demo")
		}
		if err := branches.Create(ctx, &entity.Branch{
			ID: uuid.New().String(), CompanyID: company.ID, Name: "Principal", IsMain: true,
			CreatedAt: now, UpdatedAt: now,
		}); err != nil {
			log.Fatal().Err(err).Msg("crear sucursal principal")
		}
		log.Info().Str("company_id", company.ID).Msg("empresa demo creada")
	}

	if err := ensureUser(ctx, users, &entity.User{
		CompanyID: company.ID,
		Email:     env("SEED_ADMIN_EMAIL", "admin@caja-pos.local"),
		Name:      "Administrador demo",
		Role:      entity.RoleAdmin,
	}, env("SEED_ADMIN_PASSWORD", "cambiar-esta-clave"), now); err != nil {
		log.Fatal().Err(err).Msg("usuario ADMIN")
	}

	if len(os.Args) < 2 {
		log.Info().Msg("seed completo (sin catálogo)")
		return
	}
	f, err := os.Open(os.Args[1])
	if err != nil {
		log.Fatal().Err(err).Msg("abrir catálogo")
	}
	defer f.Close()

	rows, err := readCatalog(f, company.ID, taxRate, now)
	if err != nil {
		log.Fatal().Err(err).Msg("leer catálogo")
	}
	created := 0
	for _, p := range rows {
		existing, err := products.GetByCompanyAndSKU(ctx, company.ID, p.SKU)
		if err != nil {
			log.Fatal().Err(err).Str("sku", p.SKU).Msg("buscar producto")
		}
		if existing != nil {
			continue
		}
		if err := products.Create(ctx, p); err != nil {
			log.Fatal().Err(err).Str("sku", p.SKU).Msg("crear producto")
		}
		created++
	}
	log.Info().Int("leidos", len(rows)).Int("creados", created).Msg("catálogo cargado")
}

type userStore interface {
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	Create(ctx context.Context, u *entity.User) error
}

// ensureUser crea u si el email no existe todavía.
func ensureUser(ctx context.Context, users userStore, u *entity.User, password string, now time.Time) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	existing, err := users.GetByEmail(ctx, u.Email)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.ID = uuid.New().String()
	u.PasswordHash = string(hash)
	u.Status = entity.UserStatusActive
	u.CreatedAt, u.UpdatedAt = now, now
	return users.Create(ctx, u)
}

// readCatalog interpreta el CSV. Si el archivo no es UTF-8 válido se decodifica como ISO-8859-1.
func readCatalog(r io.Reader, companyID string, defaultTax decimal.Decimal, now time.Time) ([]*entity.Product, error) {
	raw, err := io.ReadAll(bufio.NewReader(r))
	if err != nil {
		return nil, err
	}
	var src io.Reader = bytes.NewReader(raw)
	if !utf8.Valid(raw) {
		src = transform.NewReader(src, charmap.ISO8859_1.NewDecoder())
	}

	cr := csv.NewReader(src)
	cr.Comma = ';'
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}

	var out []*entity.Product
	for i, rec := range records {
		if i == 0 && strings.EqualFold(strings.TrimSpace(rec[0]), "sku") {
			continue
		}
		if len(rec) < 3 {
			return nil, fmt.Errorf("fila %d: se esperan al menos sku;nombre;precio", i+1)
		}
		p := &entity.Product{
			ID:            uuid.New().String(),
			CompanyID:     companyID,
			SKU:           strings.TrimSpace(rec[0]),
			Name:          strings.TrimSpace(rec[1]),
			TaxRate:       defaultTax,
			Type:          entity.ProductStandard,
			IsActive:      true,
			MinStock:      decimal.NewFromInt(1),
			CreatedAt:     now,
			UpdatedAt:     now,
			StockQuantity: decimal.Zero,
			Cost:          decimal.Zero,
		}
		if p.SKU == "" || p.Name == "" {
			return nil, fmt.Errorf("fila %d: sku y nombre son obligatorios", i+1)
		}
		fields := []*decimal.Decimal{&p.Price, &p.Cost, &p.StockQuantity, &p.TaxRate}
		for j, dst := range fields {
			col := j + 2
			if col >= len(rec) || strings.TrimSpace(rec[col]) == "" {
				continue
			}
			v, err := parseAmount(rec[col])
			if err != nil {
				return nil, fmt.Errorf("fila %d, columna %d: %w", i+1, col+1, err)
			}
			*dst = v
		}
		if !p.Price.IsPositive() {
			return nil, fmt.Errorf("fila %d: precio inválido", i+1)
		}
		out = append(out, p)
	}
	return out, nil
}

// parseAmount acepta "1.234,50" (formato local) y "1234.50".
func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "$"))
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, errors.New("número inválido: " + s)
	}
	return d, nil
}

func env(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}
