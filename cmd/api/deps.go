package main

import (
	"log"

	"centavo/internal/domain/transaction"
	"centavo/internal/infrastructure/postgres"
	httphandlers "centavo/internal/interfaces/http"
	"centavo/internal/shared/config"
)

// Dependencies holds all initialized application components.
type Dependencies struct {
	DB *postgres.DB

	TransactionHandler *httphandlers.TransactionHandler
}

// NewDependencies initializes all application dependencies.
func NewDependencies(cfg *config.Config) (*Dependencies, error) {
	db, err := postgres.New(cfg.Database.ConnectionString())
	if err != nil {
		return nil, err
	}
	log.Println("Connected to database")

	// Repositories
	transactionRepo := postgres.NewTransactionRepository(db)
	accountRepo := postgres.NewAccountRepository(db)
	creditCardRepo := postgres.NewCreditCardRepository(db)
	categoryRepo := postgres.NewCategoryRepository(db)
	subcategoryRepo := postgres.NewSubcategoryRepository(db)
	tagRepo := postgres.NewTagRepository(db)

	// Core mutation engine
	validator := transaction.NewValidator(accountRepo, creditCardRepo, categoryRepo, subcategoryRepo, tagRepo)
	uow := postgres.NewUnitOfWork(db)
	transactionService := transaction.NewService(uow, transactionRepo, validator)

	// Handlers
	transactionHandler := httphandlers.NewTransactionHandler(transactionService, accountRepo, creditCardRepo)

	return &Dependencies{
		DB:                 db,
		TransactionHandler: transactionHandler,
	}, nil
}
