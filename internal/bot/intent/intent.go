// Package intent разбирает callback data инлайн-кнопок в типизированные действия.
// Каждый токен декодируется ровно один раз на входе в диспетчер.
package intent

import (
	"fmt"
	"strconv"
	"strings"
)

type Intent interface{ isIntent() }

// VerificationDecision — решение по заявке: approve_<id> / reject_<id>.
type VerificationDecision struct {
	VerificationID int64
	Approve        bool
}

// PublishClass — выбор класса для публикации: news_class_<classID>.
type PublishClass struct{ ClassID int64 }

// ViewNewsClass — выбор класса для просмотра новостей: viewnews_class_<classID>.
type ViewNewsClass struct{ ClassID int64 }

// ViewReportsClass — выбор класса для просмотра отчётов: viewreports_class_<classID>.
type ViewReportsClass struct{ ClassID int64 }

// NewsPage — листание новостей: news_prev_<classID>_<page> / news_next_<classID>_<page>.
// Page — целевая страница, с единицы.
type NewsPage struct {
	ClassID int64
	Page    int
}

// ReportsPage — листание отчётов: reports_prev_<classID>_<page> / reports_next_<classID>_<page>.
type ReportsPage struct {
	ClassID int64
	Page    int
}

// ReportDownload — запрос файла отчёта: report_dl_<newsID>.
type ReportDownload struct{ NewsID int64 }

// DeleteClass — подтверждение удаления: delete_class_<classID>.
type DeleteClass struct{ ClassID int64 }

type ModeratorAction string

const (
	ModeratorAdd    ModeratorAction = "add"
	ModeratorRemove ModeratorAction = "remove"
	ModeratorList   ModeratorAction = "list"
)

// ModeratorClass — выбор класса в потоках модераторов: modclass_<action>_<classID>.
type ModeratorClass struct {
	ClassID int64
	Action  ModeratorAction
}

// ParentsClass — выбор класса для списка родителей: parents_class_<classID>.
type ParentsClass struct{ ClassID int64 }

// VerificationsClass — выбор класса для списка заявок: verif_class_<classID>.
type VerificationsClass struct{ ClassID int64 }

func (VerificationDecision) isIntent() {}
func (PublishClass) isIntent()         {}
func (ViewNewsClass) isIntent()        {}
func (ViewReportsClass) isIntent()     {}
func (NewsPage) isIntent()             {}
func (ReportsPage) isIntent()          {}
func (ReportDownload) isIntent()       {}
func (DeleteClass) isIntent()          {}
func (ModeratorClass) isIntent()       {}
func (ParentsClass) isIntent()         {}
func (VerificationsClass) isIntent()   {}

// Decode разбирает callback data. Неизвестный или битый токен возвращает ok=false.
func Decode(data string) (Intent, bool) {
	switch {
	case strings.HasPrefix(data, "approve_"):
		id, ok := parseID(data, "approve_")
		return VerificationDecision{VerificationID: id, Approve: true}, ok
	case strings.HasPrefix(data, "reject_"):
		id, ok := parseID(data, "reject_")
		return VerificationDecision{VerificationID: id}, ok
	case strings.HasPrefix(data, "news_class_"):
		id, ok := parseID(data, "news_class_")
		return PublishClass{ClassID: id}, ok
	case strings.HasPrefix(data, "viewnews_class_"):
		id, ok := parseID(data, "viewnews_class_")
		return ViewNewsClass{ClassID: id}, ok
	case strings.HasPrefix(data, "viewreports_class_"):
		id, ok := parseID(data, "viewreports_class_")
		return ViewReportsClass{ClassID: id}, ok
	case strings.HasPrefix(data, "news_prev_"), strings.HasPrefix(data, "news_next_"):
		classID, page, ok := parsePaging(data)
		return NewsPage{ClassID: classID, Page: page}, ok
	case strings.HasPrefix(data, "reports_prev_"), strings.HasPrefix(data, "reports_next_"):
		classID, page, ok := parsePaging(data)
		return ReportsPage{ClassID: classID, Page: page}, ok
	case strings.HasPrefix(data, "report_dl_"):
		id, ok := parseID(data, "report_dl_")
		return ReportDownload{NewsID: id}, ok
	case strings.HasPrefix(data, "delete_class_"):
		id, ok := parseID(data, "delete_class_")
		return DeleteClass{ClassID: id}, ok
	case strings.HasPrefix(data, "modclass_add_"):
		id, ok := parseID(data, "modclass_add_")
		return ModeratorClass{ClassID: id, Action: ModeratorAdd}, ok
	case strings.HasPrefix(data, "modclass_remove_"):
		id, ok := parseID(data, "modclass_remove_")
		return ModeratorClass{ClassID: id, Action: ModeratorRemove}, ok
	case strings.HasPrefix(data, "modclass_list_"):
		id, ok := parseID(data, "modclass_list_")
		return ModeratorClass{ClassID: id, Action: ModeratorList}, ok
	case strings.HasPrefix(data, "parents_class_"):
		id, ok := parseID(data, "parents_class_")
		return ParentsClass{ClassID: id}, ok
	case strings.HasPrefix(data, "verif_class_"):
		id, ok := parseID(data, "verif_class_")
		return VerificationsClass{ClassID: id}, ok
	}
	return nil, false
}

func parseID(data, prefix string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimPrefix(data, prefix), 10, 64)
	return id, err == nil && id > 0
}

// parsePaging разбирает <prefix>_<classID>_<page>, где page — целевая страница.
func parsePaging(data string) (classID int64, page int, ok bool) {
	parts := strings.Split(data, "_")
	if len(parts) != 4 {
		return 0, 0, false
	}
	classID, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil || classID <= 0 {
		return 0, 0, false
	}
	page, err = strconv.Atoi(parts[3])
	if err != nil || page < 1 {
		return 0, 0, false
	}
	return classID, page, true
}

func EncodeVerificationDecision(id int64, approve bool) string {
	if approve {
		return fmt.Sprintf("approve_%d", id)
	}
	return fmt.Sprintf("reject_%d", id)
}

func EncodePublishClass(classID int64) string { return fmt.Sprintf("news_class_%d", classID) }

func EncodeViewNewsClass(classID int64) string { return fmt.Sprintf("viewnews_class_%d", classID) }

func EncodeViewReportsClass(classID int64) string {
	return fmt.Sprintf("viewreports_class_%d", classID)
}

func EncodeNewsPage(classID int64, page int, next bool) string {
	if next {
		return fmt.Sprintf("news_next_%d_%d", classID, page)
	}
	return fmt.Sprintf("news_prev_%d_%d", classID, page)
}

func EncodeReportsPage(classID int64, page int, next bool) string {
	if next {
		return fmt.Sprintf("reports_next_%d_%d", classID, page)
	}
	return fmt.Sprintf("reports_prev_%d_%d", classID, page)
}

func EncodeReportDownload(newsID int64) string { return fmt.Sprintf("report_dl_%d", newsID) }

func EncodeDeleteClass(classID int64) string { return fmt.Sprintf("delete_class_%d", classID) }

func EncodeModeratorClass(classID int64, action ModeratorAction) string {
	return fmt.Sprintf("modclass_%s_%d", action, classID)
}

func EncodeParentsClass(classID int64) string { return fmt.Sprintf("parents_class_%d", classID) }

func EncodeVerificationsClass(classID int64) string {
	return fmt.Sprintf("verif_class_%d", classID)
}
