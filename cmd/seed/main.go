// seed carga datos de demostración en el Record Store configurado: un proveedor, una orden
// de compra recibida, dos tostiones, una mezcla, una catación, dos ventas y una tarea.
//
// Uso: go run ./cmd/seed
// Usa las mismas variables de entorno que la API (STORE_DRIVER, SQLITE_PATH, DB_*).
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jhoicas/cafetal-api/internal/application/dto"
	"github.com/jhoicas/cafetal-api/internal/application/inventory"
	"github.com/jhoicas/cafetal-api/internal/application/usecase"
	"github.com/jhoicas/cafetal-api/internal/domain/entity"
	"github.com/jhoicas/cafetal-api/internal/infrastructure/storage"
	"github.com/jhoicas/cafetal-api/pkg/config"
	"github.com/jhoicas/cafetal-api/pkg/logger"
	"github.com/shopspring/decimal"
)

const location = "Bodega principal"

func main() {
	cfg, err := config.Load()
	check("Cargar configuración", err)
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level})

	ctx := context.Background()
	store, closeStore, err := storage.Open(ctx, cfg, log)
	check("Abrir Record Store", err)
	defer closeStore()

	trace := inventory.NewTraceabilityUseCase(store, log, nil)
	suppliers := usecase.NewSupplierUseCase(store)
	orders := usecase.NewPurchaseOrderUseCase(store, log)
	grades := usecase.NewGradeUseCase(store)
	cuppings := usecase.NewCuppingUseCase(store)

	day := func(n int) time.Time {
		return time.Now().UTC().Truncate(24*time.Hour).AddDate(0, 0, n-30)
	}
	d := decimal.NewFromInt

	supplier, err := suppliers.Create(ctx, dto.CreateSupplierRequest{
		Name:          "Finca La Esperanza",
		ContactPerson: "Marta Ríos",
		Origin:        "Huila, Colombia",
		Specialties:   []string{"arabica", "robusta"},
	})
	check("Crear proveedor", err)

	orderDate := day(0)
	po, err := orders.Create(ctx, dto.CreatePurchaseOrderRequest{
		SupplierID: supplier.ID,
		OrderDate:  &orderDate,
		LineItems: []dto.POLineRequest{
			{Variety: "arabica", QuantityKg: d(100), UnitPrice: d(60000)},
			{Variety: "robusta", QuantityKg: d(60), UnitPrice: d(40000)},
		},
	})
	check("Crear orden de compra", err)
	_, err = orders.UpdateStatus(ctx, po.ID, entity.POStatusApproved)
	check("Aprobar orden de compra", err)

	arabica, err := trace.ReceivePurchase(ctx, inventory.ReceivePurchaseInput{
		PurchaseOrderID: po.ID, LineItemIndex: 0, Quantity: d(100), Location: location, ReceivedAt: day(2),
	})
	check("Recibir arábica", err)
	robusta, err := trace.ReceivePurchase(ctx, inventory.ReceivePurchaseInput{
		PurchaseOrderID: po.ID, LineItemIndex: 1, Quantity: d(60), Location: location, ReceivedAt: day(2),
	})
	check("Recibir robusta", err)

	gradingDate := day(3)
	_, err = grades.Create(ctx, dto.GradeRequest{
		PurchaseOrderID: po.ID,
		BatchID:         "HU-2024-01",
		Variety:         "arabica",
		GradingDate:     &gradingDate,
		Status:          "accepted",
		Analysis: entity.PhysicalAnalysis{
			ScreenSize:    16,
			MoisturePct:   decimal.RequireFromString("10.8"),
			DensityGL:     d(720),
			DefectCount:   4,
			WaterActivity: decimal.RequireFromString("0.55"),
		},
	})
	check("Clasificar lote", err)

	roastA, err := trace.RecordRoast(ctx, inventory.RecordRoastInput{
		BatchID:              "T-001",
		RoastDate:            day(5),
		Mode:                 entity.RoastModeInternal,
		Inputs:               []entity.RoastInput{{StockItemID: arabica.StockItem.ID, Weight: d(100)}},
		OutputQuantity:       d(80),
		OperationalCostPerKg: d(4000),
		Location:             location,
	})
	check("Tostar arábica", err)
	roastR, err := trace.RecordRoast(ctx, inventory.RecordRoastInput{
		BatchID:              "T-002",
		RoastDate:            day(6),
		Mode:                 entity.RoastModeExternal,
		Roaster:              "Tostadora del Sur",
		Inputs:               []entity.RoastInput{{StockItemID: robusta.StockItem.ID, Weight: d(60)}},
		OutputQuantity:       d(48),
		OperationalCostPerKg: d(3000),
		Location:             location,
	})
	check("Tostar robusta", err)

	sessionDate := day(7)
	eight := d(8)
	_, err = cuppings.Create(ctx, dto.CuppingRequest{
		RoastEventID: roastA.EventID,
		SessionDate:  &sessionDate,
		RoastLevel:   "city",
		Scores: entity.CuppingScores{
			Fragrance: eight, Flavor: eight, Aftertaste: eight, Acidity: eight, Body: eight,
			Balance: eight, Uniformity: d(10), CleanCup: d(10), Sweetness: d(10), Overall: eight,
		},
	})
	check("Registrar catación", err)

	blend, err := trace.RecordBlend(ctx, inventory.RecordBlendInput{
		Name:      "Casa 70/30",
		BlendDate: day(8),
		Components: []entity.BlendComponent{
			{StockItemID: roastA.Output.ID, Percentage: d(70)},
			{StockItemID: roastR.Output.ID, Percentage: d(30)},
		},
		OutputQuantity: d(40),
		Location:       location,
	})
	check("Registrar mezcla", err)

	_, err = trace.RecordSale(ctx, inventory.RecordSaleInput{
		InvoiceNumber: "FV-0001",
		Customer:      "Café El Parque",
		SaleDate:      day(10),
		Lines:         []entity.SaleLine{{StockItemID: roastA.Output.ID, Quantity: d(10), PricePerKg: d(150000)}},
		PaymentStatus: entity.PaymentPaid,
	})
	check("Registrar venta FV-0001", err)
	_, err = trace.RecordSale(ctx, inventory.RecordSaleInput{
		InvoiceNumber: "FV-0002",
		Customer:      "Mercado Orgánico",
		SaleDate:      day(12),
		Lines:         []entity.SaleLine{{StockItemID: blend.Output.ID, Quantity: d(5), PricePerKg: d(130000)}},
		PaymentStatus: entity.PaymentUnpaid,
	})
	check("Registrar venta FV-0002", err)

	_, err = usecase.NewPackagingUseCase(store).Create(ctx, dto.PackagingRequest{Name: "Bolsa válvula 500 g", SizeKg: decimal.RequireFromString("0.5"), Cost: d(3500)})
	check("Crear empaque", err)
	_, err = usecase.NewAlertSettingUseCase(store).Create(ctx, dto.AlertSettingRequest{Variety: "arabica", Kind: "roasted_bean", ThresholdKg: d(50)})
	check("Crear alerta", err)
	expenseDate := day(15)
	_, err = usecase.NewExpenseUseCase(store).Create(ctx, dto.ExpenseRequest{ExpenseDate: &expenseDate, Description: "Energía tostadora", Category: "utilities", Amount: d(420000)})
	check("Crear gasto", err)
	cuppingDue := day(31)
	_, err = usecase.NewTaskUseCase(store).Create(ctx, dto.TaskRequest{Text: "Catar lote T-002", Priority: "high", DueDate: &cuppingDue, AssignedTo: "Marta Ríos"})
	check("Crear tarea", err)

	fmt.Printf("Datos de demostración cargados en %s (orden %s, mezcla %s)\n", cfg.Store.Driver, po.ID, blend.EventID)
}

func check(step string, err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", step, err)
		os.Exit(1)
	}
}
