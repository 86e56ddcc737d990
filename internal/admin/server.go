// Package admin — тонкая веб-панель: классы, публикации, модераторы,
// родители, заявки и выгрузка списков в xlsx.
package admin

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"classbot/internal/blob"
	"classbot/internal/bot/authz"
	"classbot/internal/db"
	"classbot/internal/export"
	"classbot/internal/metrics"
	"classbot/internal/models"
	"classbot/internal/notify"
)

// maxUploadBytes — предел размера файла отчёта.
const maxUploadBytes = 20 << 20

type Server struct {
	DB    *sql.DB
	Blobs blob.Store
	News  *notify.Dispatcher
	Log   *zap.SugaredLogger

	srv *http.Server
}

func (s *Server) Start(ctx context.Context, addr string) {
	s.srv = &http.Server{Addr: addr, Handler: s.routes()}

	go func() { _ = s.srv.ListenAndServe() }()
	go func() {
		<-ctx.Done()
		shCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = s.srv.Shutdown(shCtx)
	}()
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /login", s.loginForm)
	mux.HandleFunc("POST /login", s.login)
	mux.HandleFunc("POST /logout", s.logout)
	mux.HandleFunc("GET /{$}", s.withUser(s.index))
	mux.HandleFunc("POST /classes/create", s.withUser(s.createClass))
	mux.HandleFunc("GET /classes/{id}", s.withUser(s.classPage))
	mux.HandleFunc("POST /classes/{id}/delete", s.withUser(s.deleteClass))
	mux.HandleFunc("POST /classes/{id}/news", s.withUser(s.createNews))
	mux.HandleFunc("POST /classes/{id}/news/{newsID}/update", s.withUser(s.updateNews))
	mux.HandleFunc("POST /classes/{id}/news/{newsID}/delete", s.withUser(s.deleteNews))
	mux.HandleFunc("POST /classes/{id}/reports/upload", s.withUser(s.uploadReport))
	mux.HandleFunc("POST /classes/{id}/moderators/add", s.withUser(s.addModerator))
	mux.HandleFunc("POST /classes/{id}/moderators/remove", s.withUser(s.removeModerator))
	mux.HandleFunc("POST /classes/{id}/parents/add", s.withUser(s.addParent))
	mux.HandleFunc("POST /classes/{id}/parents/remove", s.withUser(s.removeParent))
	mux.HandleFunc("POST /classes/{id}/verifications/{vid}/approve", s.withUser(s.approveVerification))
	mux.HandleFunc("POST /classes/{id}/verifications/{vid}/reject", s.withUser(s.rejectVerification))
	mux.HandleFunc("GET /classes/{id}/parents.xlsx", s.withUser(s.exportParents))
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

const sessionCookie = "classbot_tg"

// withUser пускает только админов и модераторов.
func (s *Server) withUser(next func(http.ResponseWriter, *http.Request, *models.User)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie(sessionCookie)
		if err != nil {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		tgID, err := strconv.ParseInt(c.Value, 10, 64)
		if err != nil {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		u, err := db.GetUserByTelegramID(r.Context(), s.DB, tgID)
		if err != nil {
			s.Log.Errorw("панель: пользователь", "err", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if !authz.IsManager(u) {
			http.Redirect(w, r, "/login?err=forbidden", http.StatusSeeOther)
			return
		}
		next(w, r, u)
	}
}

func (s *Server) loginForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, loginTmpl, map[string]any{"Err": r.URL.Query().Get("err")})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	tgID, err := strconv.ParseInt(strings.TrimSpace(r.FormValue("telegram_id")), 10, 64)
	if err != nil {
		http.Redirect(w, r, "/login?err=bad_id", http.StatusSeeOther)
		return
	}
	u, err := db.GetUserByTelegramID(r.Context(), s.DB, tgID)
	if err != nil {
		s.Log.Errorw("панель: вход", "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if !authz.IsManager(u) {
		http.Redirect(w, r, "/login?err=forbidden", http.StatusSeeOther)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name: sessionCookie, Value: strconv.FormatInt(tgID, 10),
		Path: "/", HttpOnly: true, SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: "", Path: "/", MaxAge: -1})
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (s *Server) index(w http.ResponseWriter, r *http.Request, u *models.User) {
	classes, err := db.ListManageableClasses(r.Context(), s.DB, u)
	if err != nil {
		s.Log.Errorw("панель: классы", "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	s.render(w, indexTmpl, map[string]any{
		"User":    u,
		"Classes": classes,
		"IsAdmin": u.Role == models.Admin,
		"Msg":     r.URL.Query().Get("msg"),
		"Err":     r.URL.Query().Get("err"),
	})
}

func (s *Server) createClass(w http.ResponseWriter, r *http.Request, u *models.User) {
	name := strings.TrimSpace(r.FormValue("name"))
	if !models.ValidClassName(name) {
		http.Redirect(w, r, "/?err="+url.QueryEscape("Некорректное название класса."), http.StatusSeeOther)
		return
	}
	count, err := db.CountClassesByAdmin(r.Context(), s.DB, u.TelegramID)
	if err != nil {
		s.Log.Errorw("панель: подсчёт классов", "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if count >= models.MaxClassesPerAdmin {
		http.Redirect(w, r, "/?err="+url.QueryEscape(
			fmt.Sprintf("Нельзя создать больше %d классов.", models.MaxClassesPerAdmin)), http.StatusSeeOther)
		return
	}
	class, err := db.CreateClass(r.Context(), s.DB, name, u.TelegramID)
	if errors.Is(err, db.ErrClassNameTaken) {
		http.Redirect(w, r, "/?err="+url.QueryEscape("Класс с таким названием уже существует."), http.StatusSeeOther)
		return
	}
	if err != nil {
		s.Log.Errorw("панель: создание класса", "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if err := db.PromoteToAdmin(r.Context(), s.DB, u.TelegramID, class.ID); err != nil {
		s.Log.Errorw("панель: создание класса, роль", "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, classURL(class.ID, "msg", fmt.Sprintf("Класс %s создан.", class.Name)), http.StatusSeeOther)
}

// classFromPath загружает класс из пути и проверяет право управления.
// При отказе ответ уже записан, вызывающий просто выходит.
func (s *Server) classFromPath(w http.ResponseWriter, r *http.Request, u *models.User) *models.Class {
	classID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "bad class id", http.StatusBadRequest)
		return nil
	}
	class, err := db.GetClassByID(r.Context(), s.DB, classID)
	if err != nil {
		s.Log.Errorw("панель: класс", "class_id", classID, "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return nil
	}
	if class == nil || !authz.CanManageClass(u, class) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return nil
	}
	return class
}

func classURL(classID int64, param, text string) string {
	if text == "" {
		return fmt.Sprintf("/classes/%d", classID)
	}
	return fmt.Sprintf("/classes/%d?%s=%s", classID, param, url.QueryEscape(text))
}

func (s *Server) classPage(w http.ResponseWriter, r *http.Request, u *models.User) {
	class := s.classFromPath(w, r, u)
	if class == nil {
		return
	}
	ctx := r.Context()

	newsList, err := db.ListNewsPage(ctx, s.DB, class.ID, models.NewsTypeNews, 50, 0)
	if err != nil {
		s.Log.Errorw("панель: новости", "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	reports, err := db.ListNewsPage(ctx, s.DB, class.ID, models.NewsTypeReport, 50, 0)
	if err != nil {
		s.Log.Errorw("панель: отчёты", "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	moderators, err := db.ListModerators(ctx, s.DB, class.ID)
	if err != nil {
		s.Log.Errorw("панель: модераторы", "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	members, err := db.ListClassMembers(ctx, s.DB, class.ID)
	if err != nil {
		s.Log.Errorw("панель: участники", "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	isOwner := authz.CanAppointModerator(u, class)
	var pending []models.Verification
	if isOwner {
		pending, err = db.ListPendingForClass(ctx, s.DB, class.ID)
		if err != nil {
			s.Log.Errorw("панель: заявки", "err", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
	}

	s.render(w, classTmpl, map[string]any{
		"User":       u,
		"Class":      class,
		"News":       newsList,
		"Reports":    reports,
		"Moderators": moderators,
		"Members":    members,
		"Pending":    pending,
		"IsOwner":    isOwner,
		"Msg":        r.URL.Query().Get("msg"),
		"Err":        r.URL.Query().Get("err"),
	})
}

// deleteClass — удаление класса владельцем, каскад чистит новости и привязки.
func (s *Server) deleteClass(w http.ResponseWriter, r *http.Request, u *models.User) {
	class := s.classFromPath(w, r, u)
	if class == nil {
		return
	}
	ok, err := db.DeleteClass(r.Context(), s.DB, class.ID, u.TelegramID)
	if err != nil {
		s.Log.Errorw("панель: удаление класса", "class_id", class.ID, "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if !ok {
		http.Redirect(w, r, classURL(class.ID, "err", "Удалить класс может только его владелец."), http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/?msg="+url.QueryEscape(fmt.Sprintf("Класс %s удалён.", class.Name)), http.StatusSeeOther)
}

func (s *Server) createNews(w http.ResponseWriter, r *http.Request, u *models.User) {
	class := s.classFromPath(w, r, u)
	if class == nil {
		return
	}
	title := strings.TrimSpace(r.FormValue("title"))
	content := strings.TrimSpace(r.FormValue("content"))
	if title == "" || len([]rune(title)) > 200 || content == "" {
		http.Redirect(w, r, classURL(class.ID, "err", "Укажите заголовок до 200 символов и текст новости."), http.StatusSeeOther)
		return
	}

	news, err := db.CreateNews(r.Context(), s.DB, &models.News{
		ClassID:          class.ID,
		AuthorTelegramID: u.TelegramID,
		Title:            title,
		Content:          sql.NullString{String: content, Valid: true},
		Type:             models.NewsTypeNews,
	})
	if err != nil {
		s.Log.Errorw("панель: создание новости", "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	metrics.NewsPublished.WithLabelValues(string(models.NewsTypeNews)).Inc()

	err = s.News.Dispatch(r.Context(), notify.BroadcastMessage{
		ClassID:      news.ClassID,
		Title:        news.Title,
		Content:      news.Content.String,
		CreatedAtUTC: news.CreatedAt.In(time.UTC),
		Type:         string(news.Type),
	})
	if err != nil {
		s.Log.Errorw("панель: рассылка новости", "news_id", news.ID, "err", err)
		http.Redirect(w, r, classURL(class.ID, "err", "Новость сохранена, но рассылка не удалась."), http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, classURL(class.ID, "msg", "Новость опубликована и разослана."), http.StatusSeeOther)
}

// newsFromPath — публикация из пути, обязательно принадлежащая классу.
func (s *Server) newsFromPath(w http.ResponseWriter, r *http.Request, class *models.Class) *models.News {
	newsID, err := strconv.ParseInt(r.PathValue("newsID"), 10, 64)
	if err != nil {
		http.Error(w, "bad news id", http.StatusBadRequest)
		return nil
	}
	n, err := db.GetNews(r.Context(), s.DB, newsID)
	if err != nil {
		s.Log.Errorw("панель: публикация", "news_id", newsID, "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return nil
	}
	if n == nil || n.ClassID != class.ID {
		http.Error(w, "not found", http.StatusNotFound)
		return nil
	}
	return n
}

// updateNews правит заголовок и текст. Рассылки при правке нет:
// подписчики уже получили публикацию, свежая версия видна в /viewnews.
func (s *Server) updateNews(w http.ResponseWriter, r *http.Request, u *models.User) {
	class := s.classFromPath(w, r, u)
	if class == nil {
		return
	}
	n := s.newsFromPath(w, r, class)
	if n == nil {
		return
	}
	title := strings.TrimSpace(r.FormValue("title"))
	if title == "" || len([]rune(title)) > 200 {
		http.Redirect(w, r, classURL(class.ID, "err", "Заголовок от 1 до 200 символов."), http.StatusSeeOther)
		return
	}
	ok, err := db.UpdateNews(r.Context(), s.DB, n.ID, title, strings.TrimSpace(r.FormValue("content")))
	if err != nil {
		s.Log.Errorw("панель: правка публикации", "news_id", n.ID, "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if !ok {
		http.Redirect(w, r, classURL(class.ID, "err", "Публикация уже удалена."), http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, classURL(class.ID, "msg", "Публикация обновлена."), http.StatusSeeOther)
}

func (s *Server) deleteNews(w http.ResponseWriter, r *http.Request, u *models.User) {
	class := s.classFromPath(w, r, u)
	if class == nil {
		return
	}
	n := s.newsFromPath(w, r, class)
	if n == nil {
		return
	}
	ok, err := db.DeleteNews(r.Context(), s.DB, n.ID)
	if err != nil {
		s.Log.Errorw("панель: удаление публикации", "news_id", n.ID, "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if !ok {
		http.Redirect(w, r, classURL(class.ID, "err", "Публикация уже удалена."), http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, classURL(class.ID, "msg", "Публикация удалена."), http.StatusSeeOther)
}

// uploadReport — отчёт уходит в объектное хранилище. Рассылки нет:
// подписчики забирают отчёты сами через /viewreports.
func (s *Server) uploadReport(w http.ResponseWriter, r *http.Request, u *models.User) {
	class := s.classFromPath(w, r, u)
	if class == nil {
		return
	}
	if s.Blobs == nil {
		http.Redirect(w, r, classURL(class.ID, "err", "Хранилище файлов не настроено."), http.StatusSeeOther)
		return
	}
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Redirect(w, r, classURL(class.ID, "err", "Файл слишком большой."), http.StatusSeeOther)
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	if title == "" {
		http.Redirect(w, r, classURL(class.ID, "err", "Укажите название отчёта."), http.StatusSeeOther)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Redirect(w, r, classURL(class.ID, "err", "Прикрепите файл."), http.StatusSeeOther)
		return
	}
	defer func() { _ = file.Close() }()

	key := blob.ObjectKey(class.ID, header.Filename)
	contentType := header.Header.Get("Content-Type")
	if err := s.Blobs.Upload(r.Context(), key, file, header.Size, contentType); err != nil {
		s.Log.Errorw("панель: загрузка отчёта", "err", err)
		http.Redirect(w, r, classURL(class.ID, "err", "Не удалось сохранить файл."), http.StatusSeeOther)
		return
	}

	_, err = db.CreateNews(r.Context(), s.DB, &models.News{
		ClassID:          class.ID,
		AuthorTelegramID: u.TelegramID,
		Title:            title,
		Type:             models.NewsTypeReport,
		FilePath:         sql.NullString{String: key, Valid: true},
		FileName:         sql.NullString{String: header.Filename, Valid: true},
	})
	if err != nil {
		s.Log.Errorw("панель: сохранение отчёта", "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	metrics.NewsPublished.WithLabelValues(string(models.NewsTypeReport)).Inc()

	http.Redirect(w, r, classURL(class.ID, "msg", fmt.Sprintf("Отчёт «%s» загружен.", title)), http.StatusSeeOther)
}

func (s *Server) addModerator(w http.ResponseWriter, r *http.Request, u *models.User) {
	class := s.classFromPath(w, r, u)
	if class == nil {
		return
	}
	if !authz.CanAppointModerator(u, class) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}
	target := s.userFromForm(w, r, class.ID)
	if target == nil {
		return
	}
	if !authz.CanChangeRole(target.Role, models.Moderator) {
		http.Redirect(w, r, classURL(class.ID, "err",
			fmt.Sprintf("Нельзя назначить модератором пользователя с ролью %s.", target.Role)), http.StatusSeeOther)
		return
	}
	if err := db.SetModerator(r.Context(), s.DB, target.TelegramID, class.ID); err != nil {
		s.Log.Errorw("панель: назначение модератора", "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, classURL(class.ID, "msg", fmt.Sprintf("%s теперь модератор.", target.DisplayName())), http.StatusSeeOther)
}

func (s *Server) removeModerator(w http.ResponseWriter, r *http.Request, u *models.User) {
	class := s.classFromPath(w, r, u)
	if class == nil {
		return
	}
	if !authz.CanAppointModerator(u, class) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}
	target := s.userFromForm(w, r, class.ID)
	if target == nil {
		return
	}
	if target.Role != models.Moderator || !target.ClassID.Valid || target.ClassID.Int64 != class.ID {
		http.Redirect(w, r, classURL(class.ID, "err", "Пользователь не модератор этого класса."), http.StatusSeeOther)
		return
	}
	if err := db.DemoteModerator(r.Context(), s.DB, target.TelegramID); err != nil {
		s.Log.Errorw("панель: снятие модератора", "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, classURL(class.ID, "msg", fmt.Sprintf("%s больше не модератор.", target.DisplayName())), http.StatusSeeOther)
}

// addParent привязывает зарегистрированного родителя к классу напрямую,
// минуя заявку. Повторная привязка безвредна.
func (s *Server) addParent(w http.ResponseWriter, r *http.Request, u *models.User) {
	class := s.classFromPath(w, r, u)
	if class == nil {
		return
	}
	target := s.userFromForm(w, r, class.ID)
	if target == nil {
		return
	}
	if !target.Registered() {
		http.Redirect(w, r, classURL(class.ID, "err", "Пользователь ещё не прошёл регистрацию в боте."), http.StatusSeeOther)
		return
	}
	if err := db.EnsureLink(r.Context(), s.DB, target.ID, class.ID); err != nil {
		s.Log.Errorw("панель: привязка родителя", "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, classURL(class.ID, "msg", fmt.Sprintf("%s привязан к классу.", target.DisplayName())), http.StatusSeeOther)
}

func (s *Server) removeParent(w http.ResponseWriter, r *http.Request, u *models.User) {
	class := s.classFromPath(w, r, u)
	if class == nil {
		return
	}
	target := s.userFromForm(w, r, class.ID)
	if target == nil {
		return
	}
	if err := db.DeleteLink(r.Context(), s.DB, target.ID, class.ID); err != nil {
		s.Log.Errorw("панель: отвязка родителя", "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, classURL(class.ID, "msg", fmt.Sprintf("Привязка %s удалена.", target.DisplayName())), http.StatusSeeOther)
}

// userFromForm — пользователь по telegram_id из формы.
func (s *Server) userFromForm(w http.ResponseWriter, r *http.Request, classID int64) *models.User {
	tgID, err := strconv.ParseInt(strings.TrimSpace(r.FormValue("telegram_id")), 10, 64)
	if err != nil {
		http.Redirect(w, r, classURL(classID, "err", "Некорректный Telegram ID."), http.StatusSeeOther)
		return nil
	}
	target, err := db.GetUserByTelegramID(r.Context(), s.DB, tgID)
	if err != nil {
		s.Log.Errorw("панель: поиск пользователя", "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return nil
	}
	if target == nil {
		http.Redirect(w, r, classURL(classID, "err", "Пользователь не найден. Он должен сначала написать боту."), http.StatusSeeOther)
		return nil
	}
	return target
}

func (s *Server) approveVerification(w http.ResponseWriter, r *http.Request, u *models.User) {
	s.decideVerification(w, r, u, true)
}

func (s *Server) rejectVerification(w http.ResponseWriter, r *http.Request, u *models.User) {
	s.decideVerification(w, r, u, false)
}

// decideVerification — решение по заявке. Повторное решение безвредно:
// заявка переводится из pending ровно один раз.
func (s *Server) decideVerification(w http.ResponseWriter, r *http.Request, u *models.User, approve bool) {
	class := s.classFromPath(w, r, u)
	if class == nil {
		return
	}
	if !authz.CanAppointModerator(u, class) { // заявки разбирает только владелец
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}
	vid, err := strconv.ParseInt(r.PathValue("vid"), 10, 64)
	if err != nil {
		http.Error(w, "bad verification id", http.StatusBadRequest)
		return
	}
	v, err := db.GetVerification(r.Context(), s.DB, vid)
	if err != nil {
		s.Log.Errorw("панель: заявка", "verification_id", vid, "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if v == nil || !v.ClassID.Valid || v.ClassID.Int64 != class.ID {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	var ok bool
	if approve {
		ok, err = db.ApproveVerification(r.Context(), s.DB, v.ID, u.TelegramID)
	} else {
		ok, err = db.RejectVerification(r.Context(), s.DB, v.ID, u.TelegramID)
	}
	if err != nil {
		s.Log.Errorw("панель: решение по заявке", "verification_id", v.ID, "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if !ok {
		http.Redirect(w, r, classURL(class.ID, "err", fmt.Sprintf("Заявка №%d уже обработана.", v.ID)), http.StatusSeeOther)
		return
	}

	if approve {
		metrics.VerificationsProcessed.WithLabelValues("approved").Inc()
		s.notifyRequester(v.TelegramID, fmt.Sprintf("✅ Ваша заявка на привязку к классу %s одобрена!", class.Name))
		http.Redirect(w, r, classURL(class.ID, "msg", fmt.Sprintf("Заявка №%d одобрена.", v.ID)), http.StatusSeeOther)
		return
	}
	metrics.VerificationsProcessed.WithLabelValues("rejected").Inc()
	s.notifyRequester(v.TelegramID, fmt.Sprintf("❌ Ваша заявка на привязку к классу %s отклонена.", class.Name))
	http.Redirect(w, r, classURL(class.ID, "err", fmt.Sprintf("Заявка №%d отклонена.", v.ID)), http.StatusSeeOther)
}

// notifyRequester шлёт родителю решение по заявке. Недоставка не ошибка:
// статус виден в боте.
func (s *Server) notifyRequester(chatID int64, text string) {
	if s.News == nil || s.News.Gateway == nil {
		return
	}
	if err := s.News.Gateway.SendHTML(chatID, text); err != nil {
		s.Log.Warnw("панель: уведомление родителя", "chat_id", chatID, "err", err)
	}
}

// exportParents — xlsx со списком родителей класса.
func (s *Server) exportParents(w http.ResponseWriter, r *http.Request, u *models.User) {
	class := s.classFromPath(w, r, u)
	if class == nil {
		return
	}

	members, err := db.ListClassMembers(r.Context(), s.DB, class.ID)
	if err != nil {
		s.Log.Errorw("панель: выгрузка родителей", "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	wb, err := export.NewWorkbook([]export.SheetSpec{export.ParentsSheet(class.Name, members)})
	if err != nil {
		s.Log.Errorw("панель: сборка xlsx", "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename*=UTF-8''%s`, url.PathEscape(export.BuildParentsFilename(class.Name))))
	if _, err := wb.WriteTo(w); err != nil {
		s.Log.Errorw("панель: отдача xlsx", "err", err)
	}
}
