package bot

import "golang.org/x/text/language"

// Texts holds every user-facing reply for one language. GeneratingWith is a
// fmt template taking the style title.
type Texts struct {
	Start          string
	Help           string
	InputPrompt    string
	InputStyle     string
	Stopped        string
	StyleSet       string
	BadStyle       string
	Busy           string
	GeneratingWith string

	StartGeneration string
	Wait            []string

	ErrAuth       string
	ErrSubmission string
	ErrGeneration string
	ErrTimeout    string
	ErrInternal   string

	ButtonStyle  string
	ButtonPrompt string
	ButtonHelp   string
}

var textsEN = Texts{
	Start:          "Hi! Send me a text prompt and I will turn it into an image.",
	Help:           "The bot sends your prompt to a neural image generator and replies with the result. Use /input or the keyboard to enter a prompt. Different image styles are supported: pick one with /style or the keyboard.",
	InputPrompt:    "Enter a prompt for the image.",
	InputStyle:     "Pick an image style.",
	Stopped:        "Stopped.",
	StyleSet:       "Style set.",
	BadStyle:       "Unknown style.",
	Busy:           "Your previous request is still being processed. Please wait for the result.",
	GeneratingWith: "Generating an image in the %s style.",

	StartGeneration: "Please wait, the image is being generated...",
	Wait:            []string{"Almost there...", "Just a little longer...", "One more moment..."},

	ErrAuth:       "The image service rejected the bot credentials.",
	ErrSubmission: "Could not submit the generation request. Please try again later.",
	ErrGeneration: "The service failed to generate an image. Try a different prompt.",
	ErrTimeout:    "The generation took too long and was abandoned.",
	ErrInternal:   "Something went wrong. Please try again later.",

	ButtonStyle:  "Choose image style",
	ButtonPrompt: "Enter a prompt",
	ButtonHelp:   "Help",
}

var textsRU = Texts{
	Start:          "Привет! Отправьте текстовый запрос, и я превращу его в изображение.",
	Help:           "Бот обращается к нейросети для генерации изображения по заданному запросу. Для ввода запроса можно воспользоваться командой /input или выбрать соответствующий пункт на виртуальной клавиатуре. Также поддерживается выбор различных вариантов стиля изображения: команда /style или клавиатура.",
	InputPrompt:    "Введите запрос для генерации изображения.",
	InputStyle:     "Выберите стиль изображения.",
	Stopped:        "Остановлено.",
	StyleSet:       "Стиль установлен.",
	BadStyle:       "Неверный стиль.",
	Busy:           "Предыдущий запрос ещё обрабатывается. Дождитесь результата.",
	GeneratingWith: "Изображение генерируется стилем %s.",

	StartGeneration: "Ожидайте, изображение генерируется...",
	Wait:            []string{"Ещё немного...", "Осталось совсем чуть-чуть...", "Минуточку терпения..."},

	ErrAuth:       "Сервис генерации отклонил учётные данные бота.",
	ErrSubmission: "Не удалось отправить запрос на генерацию. Попробуйте позже.",
	ErrGeneration: "Сервис не смог сгенерировать изображение. Попробуйте другой запрос.",
	ErrTimeout:    "Превышено максимальное время ожидания генерации.",
	ErrInternal:   "Что-то пошло не так. Попробуйте позже.",

	ButtonStyle:  "Выбор стиля изображения",
	ButtonPrompt: "Ввод запроса",
	ButtonHelp:   "Помощь",
}

var matcher = language.NewMatcher([]language.Tag{
	language.English,
	language.Russian,
})

// TextsFor picks the reply set for a Telegram language_code. Unknown and
// empty codes fall back to English.
func TextsFor(code string) *Texts {
	if code == "" {
		return &textsEN
	}
	_, index := language.MatchStrings(matcher, code)
	if index == 1 {
		return &textsRU
	}
	return &textsEN
}

// WaitText returns the progress message for the n-th notification: a fixed
// opener first, then the shorter reminders in rotation.
func (t *Texts) WaitText(n int) string {
	if n <= 0 {
		return t.StartGeneration
	}
	return t.Wait[(n-1)%len(t.Wait)]
}
