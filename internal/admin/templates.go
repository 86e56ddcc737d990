package admin

import (
	"html/template"
	"net/http"
	"time"
)

// mskZone — даты в панели показываем по Москве, как в боте.
var mskZone = time.FixedZone("MSK", 3*60*60)

var tmplFuncs = template.FuncMap{
	"msk": func(t time.Time) string { return t.In(mskZone).Format("02.01.2006 15:04") },
}

var (
	loginTmpl = template.Must(template.New("login").Parse(`<!doctype html>
<html lang="ru"><head><meta charset="utf-8"><title>Вход — панель класса</title></head>
<body>
<h1>Панель класса</h1>
{{if eq .Err "forbidden"}}<p>Доступ только для администраторов и модераторов.</p>{{end}}
{{if eq .Err "bad_id"}}<p>Некорректный Telegram ID.</p>{{end}}
<form method="post" action="/login">
  <label>Ваш Telegram ID: <input name="telegram_id" required></label>
  <button type="submit">Войти</button>
</form>
<p>ID можно узнать у бота @userinfobot.</p>
</body></html>`))

	indexTmpl = template.Must(template.New("index").Parse(`<!doctype html>
<html lang="ru"><head><meta charset="utf-8"><title>Панель класса</title></head>
<body>
<h1>Мои классы</h1>
<p>{{.User.DisplayName}} ({{.User.Role}})
<form method="post" action="/logout" style="display:inline"><button type="submit">Выйти</button></form></p>
{{if .Msg}}<p><b>{{.Msg}}</b></p>{{end}}
{{if .Err}}<p><b>{{.Err}}</b></p>{{end}}
{{if not .Classes}}<p>Классов нет.</p>{{end}}
<ul>
{{range .Classes}}
  <li><a href="/classes/{{.ID}}">{{.Name}}</a></li>
{{end}}
</ul>

<h2>Создать класс</h2>
<form method="post" action="/classes/create">
  <label>Название: <input name="name" required placeholder="5А"></label>
  <button type="submit">Создать</button>
</form>
</body></html>`))

	classTmpl = template.Must(template.New("class").Funcs(tmplFuncs).Parse(`<!doctype html>
<html lang="ru"><head><meta charset="utf-8"><title>{{.Class.Name}} — панель класса</title></head>
<body>
<p><a href="/">← Мои классы</a></p>
<h1>Класс {{.Class.Name}}</h1>
{{if .Msg}}<p><b>{{.Msg}}</b></p>{{end}}
{{if .Err}}<p><b>{{.Err}}</b></p>{{end}}

<h2>Новости</h2>
{{if not .News}}<p>Новостей нет.</p>{{end}}
{{range .News}}
<details>
  <summary>{{.Title}} — {{msk .CreatedAt}}</summary>
  <form method="post" action="/classes/{{$.Class.ID}}/news/{{.ID}}/update">
    <label>Заголовок: <input name="title" value="{{.Title}}" required></label><br>
    <label>Текст:<br><textarea name="content" rows="4" cols="60">{{.Content.String}}</textarea></label><br>
    <button type="submit">Сохранить</button>
  </form>
  <form method="post" action="/classes/{{$.Class.ID}}/news/{{.ID}}/delete">
    <button type="submit">Удалить</button>
  </form>
</details>
{{end}}

<h3>Опубликовать новость</h3>
<form method="post" action="/classes/{{.Class.ID}}/news">
  <label>Заголовок: <input name="title" required></label><br>
  <label>Текст:<br><textarea name="content" rows="4" cols="60" required></textarea></label><br>
  <button type="submit">Опубликовать</button>
</form>

<h2>Отчёты</h2>
{{if not .Reports}}<p>Отчётов нет.</p>{{end}}
<ul>
{{range .Reports}}
  <li>{{.Title}}{{if .FileName.Valid}} ({{.FileName.String}}){{end}} — {{msk .CreatedAt}}
    <form method="post" action="/classes/{{$.Class.ID}}/news/{{.ID}}/delete" style="display:inline">
      <button type="submit">Удалить</button>
    </form>
  </li>
{{end}}
</ul>

<h3>Загрузить отчёт</h3>
<form method="post" action="/classes/{{.Class.ID}}/reports/upload" enctype="multipart/form-data">
  <label>Название: <input name="title" required></label><br>
  <label>Файл: <input type="file" name="file" required></label><br>
  <button type="submit">Загрузить</button>
</form>

{{if .IsOwner}}
<h2>Заявки</h2>
{{if not .Pending}}<p>Заявок нет.</p>{{end}}
<ul>
{{range .Pending}}
  <li>№{{.ID}} {{.FullName}}, {{.Phone}} — {{msk .CreatedAt}}
    <form method="post" action="/classes/{{$.Class.ID}}/verifications/{{.ID}}/approve" style="display:inline">
      <button type="submit">Одобрить</button>
    </form>
    <form method="post" action="/classes/{{$.Class.ID}}/verifications/{{.ID}}/reject" style="display:inline">
      <button type="submit">Отклонить</button>
    </form>
  </li>
{{end}}
</ul>

<h2>Модераторы</h2>
{{if not .Moderators}}<p>Модераторов нет.</p>{{end}}
<ul>
{{range .Moderators}}
  <li>{{.DisplayName}} ({{.TelegramID}})
    <form method="post" action="/classes/{{$.Class.ID}}/moderators/remove" style="display:inline">
      <input type="hidden" name="telegram_id" value="{{.TelegramID}}">
      <button type="submit">Снять</button>
    </form>
  </li>
{{end}}
</ul>
<form method="post" action="/classes/{{.Class.ID}}/moderators/add">
  <label>Telegram ID: <input name="telegram_id" required></label>
  <button type="submit">Назначить модератором</button>
</form>
{{end}}

<h2>Родители</h2>
<p><a href="/classes/{{.Class.ID}}/parents.xlsx">Выгрузить в xlsx</a></p>
{{if not .Members}}<p>Родителей нет.</p>{{end}}
<ul>
{{range .Members}}
  <li>{{.DisplayName}} ({{.TelegramID}}, {{.Role}}{{if .IsVerified}}, верифицирован{{end}})
    <form method="post" action="/classes/{{$.Class.ID}}/parents/remove" style="display:inline">
      <input type="hidden" name="telegram_id" value="{{.TelegramID}}">
      <button type="submit">Отвязать</button>
    </form>
  </li>
{{end}}
</ul>
<form method="post" action="/classes/{{.Class.ID}}/parents/add">
  <label>Telegram ID: <input name="telegram_id" required></label>
  <button type="submit">Привязать родителя</button>
</form>

{{if .IsOwner}}
<h2>Опасная зона</h2>
<form method="post" action="/classes/{{.Class.ID}}/delete"
      onsubmit="return confirm('Удалить класс {{.Class.Name}} со всеми публикациями?')">
  <button type="submit">Удалить класс</button>
</form>
{{end}}
</body></html>`))
)

func (s *Server) render(w http.ResponseWriter, t *template.Template, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := t.Execute(w, data); err != nil {
		s.Log.Errorw("панель: шаблон", "err", err)
	}
}
