// internal/service/bill.go
package service

// LegiScan progress codes as carried in campaigns.bill_status.
var billStatusText = map[int]string{
	1: "Introduced",
	2: "Engrossed",
	3: "Enrolled",
	4: "Passed",
	5: "Vetoed",
	6: "Failed",
}

func BillStatusText(code int) string {
	if s, ok := billStatusText[code]; ok {
		return s
	}
	return "Unknown"
}
