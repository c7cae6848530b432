// setup crea el usuario system_admin inicial de la plataforma. El registro
// público nunca produce este rol, por lo que el bootstrap se hace una sola vez
// con esta herramienta.
//
// Uso: go run ./cmd/setup -email admin@tadbeer.app -password '...' [-name "مدير النظام"] [-company 0]
// Con -company 0 se crea una empresa plataforma dedicada para colgar al admin.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/tadbeer/tadbeer-api/internal/application/subscription"
	"github.com/tadbeer/tadbeer-api/internal/domain/entity"
	"github.com/tadbeer/tadbeer-api/internal/infrastructure/postgres"
	"github.com/tadbeer/tadbeer-api/pkg/config"
)

func main() {
	email := flag.String("email", "", "correo del system_admin (obligatorio)")
	password := flag.String("password", "", "contraseña inicial (obligatorio, mínimo 8 caracteres)")
	name := flag.String("name", "مدير النظام", "nombre visible del system_admin")
	companyID := flag.Int64("company", 0, "empresa a la que se asocia; 0 crea una empresa plataforma")
	flag.Parse()

	if *email == "" || *password == "" {
		fmt.Fprintln(os.Stderr, "uso: setup -email <correo> -password <contraseña> [-name ...] [-company <id>]")
		os.Exit(1)
	}
	if len(*password) < 8 {
		fmt.Fprintln(os.Stderr, "la contraseña debe tener al menos 8 caracteres")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cargar configuración: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		fmt.Fprintf(os.Stderr, "conexión a PostgreSQL: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	companies := postgres.NewCompanyRepository(pool)
	users := postgres.NewUserRepository(pool)

	if existing, err := users.GetByEmail(ctx, *email); err != nil {
		fmt.Fprintf(os.Stderr, "consultar usuario: %v\n", err)
		os.Exit(1)
	} else if existing != nil {
		fmt.Fprintf(os.Stderr, "ya existe un usuario con el correo %s\n", *email)
		os.Exit(1)
	}

	targetCompany := *companyID
	if targetCompany == 0 {
		plan, _ := subscription.PlanByName(entity.PlanEnterprise)
		expires := time.Now().AddDate(10, 0, 0)
		company := &entity.Company{
			Name:                "منصة تدبير",
			Email:               "platform+" + *email,
			SubscriptionPlan:    plan.Name,
			SubscriptionStatus:  entity.SubscriptionActive,
			MaxUsers:            plan.MaxUsers,
			MaxStorageMB:        plan.MaxStorageMB,
			SubscriptionExpires: &expires,
		}
		if err := companies.Create(ctx, company); err != nil {
			fmt.Fprintf(os.Stderr, "crear empresa plataforma: %v\n", err)
			os.Exit(1)
		}
		targetCompany = company.ID
		fmt.Printf("empresa plataforma creada (id=%d)\n", targetCompany)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hash de contraseña: %v\n", err)
		os.Exit(1)
	}

	admin := &entity.User{
		CompanyID:    targetCompany,
		Name:         *name,
		Email:        *email,
		PasswordHash: string(hash),
		Role:         entity.RoleSystemAdmin,
		IsActive:     true,
	}
	if err := users.Create(ctx, admin); err != nil {
		fmt.Fprintf(os.Stderr, "crear system_admin: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("system_admin creado (id=%d, email=%s, company=%d)\n", admin.ID, admin.Email, targetCompany)
}
