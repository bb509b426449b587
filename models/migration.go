package models

import (
	"log"

	"github.com/mmdatafocus/ledger_backend/config"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&Account{}, &AccountingDimension{},
		&Company{}, &CostCenter{}, &Customer{},
		&GLEntry{},
		&Project{}, &PurchaseInvoice{}, &PurchaseTaxesAndCharges{},
		&SalesInvoice{}, &SalesTaxesAndCharges{}, &SalesTeam{}, &Single{}, &Supplier{},
	)
	if err != nil {
		log.Fatal(err)
	}
}
