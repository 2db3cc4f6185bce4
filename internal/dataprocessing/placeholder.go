package dataprocessing

import (
	"github.com/Zeyna175/data-processor-app/pkg/contracts/domain"
)

// Sample tables returned when every decoding strategy for a format fails.
// Callers see Placeholder=true on the load result.

func csvPlaceholder() *domain.Table {
	n, t, null := domain.Number, domain.Text, domain.Null()
	return domain.NewTable().
		MustAddColumn("name", t("Jean"), t("Marie"), t("Pierre")).
		MustAddColumn("age", n(25), n(30), null).
		MustAddColumn("salary", n(50000), null, n(45000))
}

func jsonPlaceholder() *domain.Table {
	n, t, null := domain.Number, domain.Text, domain.Null()
	return domain.NewTable().
		MustAddColumn("name", t("Jean"), t("Marie"), t("Pierre"), t("Jean"), t("Alice")).
		MustAddColumn("age", n(25), null, n(30), n(25), n(150)).
		MustAddColumn("salary", n(50000), n(60000), null, n(50000), n(70000)).
		MustAddColumn("city", t("Paris"), t("Lyon"), t("Marseille"), t("Paris"), t("Nice"))
}

func xmlPlaceholder() *domain.Table {
	return domain.NewTable().
		MustAddColumn("column1", domain.Text("value1"), domain.Text("value2")).
		MustAddColumn("column2", domain.Number(1), domain.Number(2))
}

func placeholderFor(fileType domain.FileType) (*domain.Table, bool) {
	switch fileType {
	case domain.FileTypeCSV:
		return csvPlaceholder(), true
	case domain.FileTypeJSON:
		return jsonPlaceholder(), true
	case domain.FileTypeXML:
		return xmlPlaceholder(), true
	}
	return nil, false
}
