package main

// PrescriptionRow is one prescription event as stored in Parquet input.
// Costs stay as text so malformed values survive the conversion and are
// imputed the same way as CSV input.
type PrescriptionRow struct {
	ID                  string  `parquet:"id"`
	PrescriberLastName  *string `parquet:"prescriber_last_name,optional"`
	PrescriberFirstName *string `parquet:"prescriber_first_name,optional"`
	DrugName            string  `parquet:"drug_name"`
	DrugCost            *string `parquet:"drug_cost,optional"`
}

// DrugCostRow is one ranked report line in Parquet output.
//
// total_cost is a double for querying; total_cost_text carries the exact
// report rendering (whole vs fractional) that the CSV report prints.
// Parquet strings must be valid UTF-8, so invalid bytes in drug_name are
// replaced with spaces here while the CSV report keeps them as read.
type DrugCostRow struct {
	Rank          int32   `parquet:"rank"`
	DrugName      string  `parquet:"drug_name"`
	NumPrescriber int64   `parquet:"num_prescriber"`
	TotalCost     float64 `parquet:"total_cost"`
	TotalCostText string  `parquet:"total_cost_text"`
}

// reportHeader is the CSV report header, in column order.
var reportHeader = []string{"drug_name", "num_prescriber", "total_cost"}
