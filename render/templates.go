package render

const pageTemplate = `{{define "page"}}<!DOCTYPE html>
<html data-theme="{{.Theme}}">
<head>
    <title>chatui</title>
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <style>
        :root { --bg: #FFF8F0; --fg: #2C1F3D; --accent: #6B4C8A; --muted: #E8DCC4; --card: #FFFBF5; }
        [data-theme="dark"] { --bg: #17121F; --fg: #EDE6F5; --accent: #9C7BC0; --muted: #2C2338; --card: #211A2B; }
        body { margin: 0; font-family: system-ui, -apple-system, sans-serif; background: var(--bg); color: var(--fg); }
        header { display: flex; align-items: center; gap: 1rem; max-width: 760px; margin: 1.5rem auto; }
        header form { display: inline; }
        .chat { max-width: 760px; margin: 0 auto; }
        .message { margin: 1rem 0; }
        .message.user .message-content { padding: 1rem 1.25rem; background: var(--muted); border-left: 4px solid var(--accent); font-style: italic; white-space: pre-wrap; }
        .message.bot .message-content { padding: 1.25rem; background: var(--card); border: 1px solid var(--muted); border-radius: 8px; }
        .message.error .message-content { border-color: #C0392B; }
        .generated-image, .generated-video { max-width: 100%; border-radius: 8px; }
        .loading-dots::after { content: "..."; }
        .welcome-container { text-align: center; margin: 3rem auto; }
        .sample-questions { display: flex; flex-wrap: wrap; gap: .5rem; justify-content: center; }
        .sample-question { padding: .5rem 1rem; border: 1px solid var(--muted); border-radius: 20px; background: none; color: inherit; cursor: pointer; }
        .input-row { display: flex; gap: .5rem; max-width: 760px; margin: 1rem auto 3rem; }
        .input-row input[type="text"] { flex: 1; padding: 1rem 1.25rem; font-size: 1.1rem; border: 3px solid var(--accent); border-radius: 12px; background: var(--card); color: inherit; }
        .input-row input[type="submit"] { padding: 1rem 2rem; font-weight: 600; background: var(--accent); color: white; border: none; border-radius: 10px; cursor: pointer; }
        .model-selector { padding: .4rem .8rem; border: 2px solid var(--muted); border-radius: 8px; background: none; color: inherit; cursor: pointer; }
        .model-popover { max-width: 760px; margin: 0 auto; padding: 1rem; background: var(--card); border: 1px solid var(--muted); border-radius: 12px; }
        .media-type-btn.active, .model-card-popover.active { border-color: var(--accent); }
        .media-section { display: none; }
        .media-section.active { display: block; }
        .popover-model-grid { display: grid; grid-template-columns: repeat(auto-fill, minmax(140px, 1fr)); gap: .5rem; }
        .popover-model-grid.collapsed, .hidden { display: none; }
        .model-card-popover { width: 100%; padding: .75rem; border: 2px solid var(--muted); border-radius: 10px; background: none; color: inherit; cursor: pointer; text-align: left; }
        .model-card-popover.premium .premium-icon-badge { float: right; }
        .model-name-sub, .capability-badge { font-size: .8rem; opacity: .8; }
        .popover-error { text-align: center; padding: 20px; }
    </style>
</head>
<body>
    <header>
        <form method="POST" action="/popover/toggle">
            <button class="model-selector" type="submit" data-model="{{.Selection.ModelName}}" data-media-type="{{.Selection.MediaType}}">
                <span id="selectedModelName">{{.Selection.ModelName}}</span> ▾
            </button>
        </form>
        <form method="POST" action="/new"><button type="submit">New Chat</button></form>
        <form method="POST" action="/theme"><button type="submit">{{if eq .Theme "dark"}}Light mode{{else}}Dark mode{{end}}</button></form>
    </header>
    {{if .Popover.Open}}{{template "popover" .Popover}}{{end}}
    <div class="chat" id="chatMessages">
        {{if .FirstMessage}}
        <div class="welcome-container" id="welcomeContainer">
            <h1 class="welcome-title">How can I help you?</h1>
            <form class="sample-questions" method="POST" action="/sample">
                {{range .SampleQuestions}}<button class="sample-question" type="submit" name="question" value="{{.}}">{{.}}</button>
                {{end}}
            </form>
        </div>
        {{end}}
        {{range .Messages}}{{template "message" .}}
        {{end}}
    </div>
    <form id="chat-form" method="POST" action="/send">
        <div class="input-row">
            <input type="text" name="q" id="query-input" placeholder="Type your message..." autocomplete="off" autofocus>
            <input type="submit" value="Send" id="send-button">
        </div>
    </form>
    <script>
        document.getElementById('chat-form').addEventListener('submit', async function (event) {
            event.preventDefault();
            const input = document.getElementById('query-input');
            const query = input.value.trim();
            if (!query) return;
            input.value = '';
            const welcome = document.getElementById('welcomeContainer');
            if (welcome) welcome.style.display = 'none';
            const chat = document.getElementById('chatMessages');
            const user = document.createElement('div');
            user.className = 'message user';
            const content = document.createElement('div');
            content.className = 'message-content';
            content.textContent = query;
            user.appendChild(content);
            chat.appendChild(user);
            const loading = document.createElement('div');
            loading.className = 'message bot';
            loading.innerHTML = '<div class="message-content"><div class="loading-dots"></div></div>';
            chat.appendChild(loading);
            try {
                const response = await fetch('/send', {
                    method: 'POST',
                    headers: { 'X-Requested-With': 'XMLHttpRequest', 'Content-Type': 'application/x-www-form-urlencoded' },
                    body: new URLSearchParams({ q: query }).toString()
                });
                loading.outerHTML = await response.text();
            } catch (error) {
                loading.remove();
                window.location.reload();
            }
        });
    </script>
</body>
</html>{{end}}`

const partialTemplates = `{{define "message"}}<div class="message {{.Role}}{{if .Error}} error{{end}}" id="msg-{{.ID}}">
    <div class="message-content">
        {{- if eq (print .Role) "user"}}{{.Text}}
        {{- else if .Pending}}<div class="loading-dots"></div>
        {{- else if .ImageURL}}<img src="{{.ImageURL}}" alt="Generated image" class="generated-image">
        {{- else if .VideoURL}}<video src="{{.VideoURL}}" class="generated-video" controls autoplay loop muted></video>
        {{- else}}{{.Body}}{{end -}}
    </div>
</div>{{end}}

{{define "card"}}<form method="POST" action="/popover/select" class="{{if .Hidden}}hidden{{end}}">
    <input type="hidden" name="type" value="{{.MediaType}}">
    <button class="model-card-popover{{if .Active}} active{{end}}{{if .Model.Premium}} premium{{end}}" type="submit" name="model" value="{{.Model.ModelName}}"
        data-model="{{.Model.ModelName}}" data-provider="{{.Model.Provider}}" data-api-name="{{.Model.APIName}}" data-type="{{.MediaType}}">
        {{if and .Model.Premium .Model.PremiumIcon}}<span class="premium-icon-badge badge-type-{{.Model.PremiumIcon}}">★</span>{{end}}
        <span class="model-logo-fallback">{{.Initials}}</span>
        <div class="model-name-main">{{.Label}}</div>
        {{if .Sub}}<div class="model-name-sub">{{.Sub}}</div>{{end}}
        <div class="model-capabilities-bottom">{{range .Capabilities}}<span class="capability-badge" title="{{.}}">{{.}}</span> {{end}}</div>
    </button>
</form>{{end}}

{{define "grid"}}<div class="popover-model-section{{if .Hidden}} hidden{{end}}">
    <div class="popover-section-header">{{.Title}}</div>
    <div class="popover-model-grid">{{range .Cards}}{{template "card" .}}{{end}}</div>
</div>{{end}}

{{define "popover"}}<div class="model-popover" id="modelDropdown">
    <form method="GET" action="/">
        <input type="text" name="filter" id="modelSearchInput" value="{{.Query}}" placeholder="Search models...">
    </form>
    {{if .Error}}<p class="popover-error">{{.Error}}</p>{{end}}
    {{range .Sections}}
    <form method="POST" action="/popover/media" style="display:inline">
        <button class="media-type-btn{{if .Active}} active{{end}}" type="submit" name="type" value="{{.MediaType}}" data-type="{{.MediaType}}">{{.Title}}</button>
    </form>
    {{end}}
    <div id="popoverScrollableContent">
    {{range .Sections}}
        <div class="media-section{{if .Active}} active{{end}}" id="{{.MediaType}}-section">
            {{if .Empty}}<p class="popover-empty">{{.Empty}}</p>{{end}}
            {{with .Favorites}}{{template "grid" .}}{{end}}
            {{if .Providers}}<div class="popover-section-header">All Providers</div>{{end}}
            {{range .Providers}}
            <div class="provider-section-collapsible{{if .Hidden}} hidden{{end}}">
                <form method="POST" action="/popover/section">
                    <button class="provider-section-header{{if .Open}} open{{end}}" type="submit" name="provider" value="{{.Title}}" data-provider="{{.Title}}">
                        <span class="provider-name">{{.Title}}</span>
                        <span class="provider-model-count">({{.Count}})</span>
                    </button>
                </form>
                <div class="popover-model-grid provider-grid{{if not .Open}} collapsed{{end}}">{{range .Cards}}{{template "card" .}}{{end}}</div>
            </div>
            {{end}}
            {{with .Grid}}{{template "grid" .}}{{end}}
        </div>
    {{end}}
    </div>
    {{if .Loaded}}
    <form method="POST" action="/popover/expand">
        <button id="popoverShowMoreBtn" type="submit"><span>{{.ExpandLabel}}</span></button>
    </form>
    {{end}}
</div>{{end}}`
