package intent

import (
	"reflect"
	"testing"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		data string
		want Intent
	}{
		{"approve_12", VerificationDecision{VerificationID: 12, Approve: true}},
		{"reject_12", VerificationDecision{VerificationID: 12}},
		{"news_class_7", PublishClass{ClassID: 7}},
		{"viewnews_class_7", ViewNewsClass{ClassID: 7}},
		{"viewreports_class_7", ViewReportsClass{ClassID: 7}},
		{"news_prev_7_2", NewsPage{ClassID: 7, Page: 2}},
		{"news_next_7_3", NewsPage{ClassID: 7, Page: 3}},
		{"reports_prev_7_1", ReportsPage{ClassID: 7, Page: 1}},
		{"reports_next_7_4", ReportsPage{ClassID: 7, Page: 4}},
		{"report_dl_99", ReportDownload{NewsID: 99}},
		{"delete_class_5", DeleteClass{ClassID: 5}},
		{"modclass_add_5", ModeratorClass{ClassID: 5, Action: ModeratorAdd}},
		{"modclass_remove_5", ModeratorClass{ClassID: 5, Action: ModeratorRemove}},
		{"modclass_list_5", ModeratorClass{ClassID: 5, Action: ModeratorList}},
		{"parents_class_5", ParentsClass{ClassID: 5}},
		{"verif_class_5", VerificationsClass{ClassID: 5}},
	}
	for _, tt := range tests {
		got, ok := Decode(tt.data)
		if !ok {
			t.Errorf("Decode(%q): ok=false", tt.data)
			continue
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Decode(%q) = %#v, ожидали %#v", tt.data, got, tt.want)
		}
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	for _, data := range []string{
		"", "unknown", "approve_", "approve_abc", "approve_0",
		"news_prev_7", "news_next_x_1", "news_prev_7_0", "report_dl_-1",
	} {
		if _, ok := Decode(data); ok {
			t.Errorf("Decode(%q): ожидали ok=false", data)
		}
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	tokens := []string{
		EncodeVerificationDecision(3, true),
		EncodeVerificationDecision(3, false),
		EncodePublishClass(7),
		EncodeViewNewsClass(7),
		EncodeViewReportsClass(7),
		EncodeNewsPage(7, 2, true),
		EncodeNewsPage(7, 2, false),
		EncodeReportsPage(7, 2, true),
		EncodeReportDownload(9),
		EncodeDeleteClass(5),
		EncodeModeratorClass(5, ModeratorRemove),
		EncodeParentsClass(5),
		EncodeVerificationsClass(5),
	}
	for _, tok := range tokens {
		if _, ok := Decode(tok); !ok {
			t.Errorf("Decode(%q): ожидали ok=true", tok)
		}
	}
}
