package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	catalogdomain "github.com/sunterra/sunplan/internal/catalog/domain"
	plandomain "github.com/sunterra/sunplan/internal/plan/domain"
)

type PDFProvider struct{}

func New() *PDFProvider {
	return &PDFProvider{}
}

// GenerateProposal renders the quote snapshot as a proposal document.
func (p *PDFProvider) GenerateProposal(ctx context.Context, snapshot *plandomain.Snapshot) (io.Reader, error) {
	if snapshot == nil {
		return nil, fmt.Errorf("nil snapshot")
	}

	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	title := "Your Solar Proposal"
	if snapshot.Inputs.FirstName != "" {
		title = fmt.Sprintf("%s, here is your solar proposal", snapshot.Inputs.FirstName)
	}
	m.AddRow(30,
		text.NewCol(12, title, props.Text{
			Size:  18,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
	)

	m.AddRow(16,
		col.New(12).Add(
			text.New(fmt.Sprintf("Prepared on %s", snapshot.ComputedAt.Format("2 January 2006")), props.Text{Size: 9}),
			text.New(snapshot.Inputs.Location.Address, props.Text{Size: 9, Top: 4}),
		),
	)

	m.AddRow(12,
		text.NewCol(12, "System", props.Text{Size: 12, Style: fontstyle.Bold}),
	)
	m.AddRow(30,
		col.New(6).Add(
			text.New(fmt.Sprintf("%d x %s", snapshot.Specs.PanelCount, equipmentName(snapshot.Equipment.Panel)), props.Text{Size: 10}),
			text.New(fmt.Sprintf("System size: %.2f kWp", snapshot.Specs.SystemSizeKwp), props.Text{Size: 10, Top: 5}),
			text.New(fmt.Sprintf("Estimated generation: %.0f kWh/year", snapshot.Specs.AnnualGenerationKwh), props.Text{Size: 10, Top: 10}),
		),
		col.New(6).Add(
			text.New("Inverter: "+inverterName(snapshot.Equipment.Inverter), props.Text{Size: 10}),
			text.New(batteryLine(snapshot), props.Text{Size: 10, Top: 5}),
		),
	)

	m.AddRow(12,
		text.NewCol(12, "Investment", props.Text{Size: 12, Style: fontstyle.Bold}),
	)
	addAmountRow(m, "Solar system", snapshot.Costs.SystemBase)
	if snapshot.Costs.Battery > 0 {
		addAmountRow(m, "Battery storage", snapshot.Costs.Battery)
	}
	if snapshot.Costs.EVCharger > 0 {
		addAmountRow(m, "EV charge point", snapshot.Costs.EVCharger)
	}
	if snapshot.Costs.TotalGrants > 0 {
		addAmountRow(m, "Grants", -snapshot.Costs.TotalGrants)
	}
	m.AddRow(10,
		text.NewCol(8, "Total after grants", props.Text{Size: 10, Style: fontstyle.Bold}),
		text.NewCol(4, euro(snapshot.Costs.NetTotal), props.Text{Size: 10, Style: fontstyle.Bold, Align: align.Right}),
	)

	m.AddRow(12,
		text.NewCol(12, "Savings", props.Text{Size: 12, Style: fontstyle.Bold}),
	)
	m.AddRow(30,
		col.New(12).Add(
			text.New(fmt.Sprintf("Estimated annual savings: %s", euro(snapshot.Savings.TotalAnnual)), props.Text{Size: 10}),
			text.New(fmt.Sprintf("Payback period: %s years", snapshot.Savings.PaybackYears), props.Text{Size: 10, Top: 5}),
			text.New(fmt.Sprintf("Bill offset: %.0f%%", snapshot.Savings.BillOffsetPercent), props.Text{Size: 10, Top: 10}),
		),
	)

	if snapshot.Financing.MonthlyPayment > 0 {
		m.AddRow(14,
			text.NewCol(12,
				fmt.Sprintf("Indicative finance: %s/month over %d years", euro(snapshot.Financing.MonthlyPayment), snapshot.Financing.TermYears),
				props.Text{Size: 9}),
		)
	}

	m.AddRow(14,
		text.NewCol(12,
			"Figures are estimates based on your inputs and current tariffs. A site survey confirms the final design and price.",
			props.Text{Size: 8}),
	)

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(doc.GetBytes()), nil
}

func addAmountRow(m core.Maroto, label string, amount float64) {
	m.AddRow(8,
		text.NewCol(8, label, props.Text{Size: 10}),
		text.NewCol(4, euro(amount), props.Text{Size: 10, Align: align.Right}),
	)
}

func euro(amount float64) string {
	return fmt.Sprintf("EUR %.2f", amount)
}

func equipmentName(panel *catalogdomain.Panel) string {
	if panel == nil {
		return "solar panel"
	}
	return panel.Name
}

func inverterName(inverter *catalogdomain.Inverter) string {
	if inverter == nil {
		return "included"
	}
	return inverter.Name
}

func batteryLine(snapshot *plandomain.Snapshot) string {
	if snapshot.Equipment.Battery == nil || snapshot.Specs.BatteryCount == 0 {
		return "Battery: none"
	}
	return fmt.Sprintf("Battery: %d x %s (%.1f kWh total)",
		snapshot.Specs.BatteryCount,
		snapshot.Equipment.Battery.Name,
		snapshot.Specs.BatteryCapacityKwh)
}
