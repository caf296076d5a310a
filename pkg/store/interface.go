package store

// Record is one row of a named dataset, field name to value. Values are
// kept as strings; callers parse them into typed models.
type Record map[string]string

// Store defines the interface for reading and writing named tabular
// datasets. Read returns a full snapshot; Write replaces the dataset
// wholesale. There is no transactional guarantee across dataset names.
type Store interface {
	Read(name string) ([]Record, error)
	Write(name string, records []Record) error

	Close() error
}

// Dataset names as persisted.
const (
	DatasetActiveLoans    = "Active_Loans"
	DatasetCompletedLoans = "Completed_Loans"
	DatasetCollections    = "Collections"
	DatasetUsers          = "Users"
)

var datasetColumns = map[string][]string{
	DatasetActiveLoans: {
		"Loan_ID", "Date", "Party_Name", "Mobile_Number", "Total_Amount",
		"Daily_Amount", "Total_Days", "End_Date", "Payment_Mode",
		"Collected_Amount", "Remaining_Amount", "Status",
	},
	DatasetCompletedLoans: {
		"Loan_ID", "Date", "Party_Name", "Mobile_Number", "Total_Amount",
		"Daily_Amount", "Total_Days", "End_Date", "Payment_Mode",
		"Collected_Amount", "Remaining_Amount", "Status", "Completion_Date",
	},
	DatasetCollections: {
		"Collection_ID", "Date", "Loan_ID", "Party_Name",
		"Amount_Collected", "Days_Count", "Payment_Mode",
	},
	DatasetUsers: {
		"username", "name", "password_hash",
	},
}

// DatasetColumns returns the column set for a known dataset name.
func DatasetColumns(name string) ([]string, bool) {
	cols, ok := datasetColumns[name]
	return cols, ok
}
