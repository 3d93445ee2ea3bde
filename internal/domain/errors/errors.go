package errors

import "errors"

var (
	ErrUserNotFound       = errors.New("пользователь не найден")
	ErrTaskNotFound       = errors.New("задача не найдена")
	ErrCommentNotFound    = errors.New("комментарий не найден")
	ErrReplyNotFound      = errors.New("ответ не найден")
	ErrInvalidCredentials = errors.New("неверные учетные данные")
	ErrUserAlreadyExists  = errors.New("пользователь уже существует")
	ErrEmailAlreadyExists = errors.New("email уже зарегистрирован")
	ErrInvalidInput       = errors.New("некорректные входные данные")
	ErrValidationFailed   = errors.New("ошибка валидации")
	ErrUnauthorized       = errors.New("нет доступа")
	ErrForbidden          = errors.New("доступ запрещён")
	ErrInternalServer     = errors.New("внутренняя ошибка сервера")
	ErrBadRequest         = errors.New("неверный запрос")
	ErrNotFound           = errors.New("ресурс не найден")
	ErrConflict           = errors.New("конфликт ресурса")

	ErrInvalidUsername    = errors.New("некорректное имя пользователя")
	ErrInvalidEmail       = errors.New("некорректный email")
	ErrInvalidPassword    = errors.New("некорректный пароль")
	ErrWeakPassword       = errors.New("пароль должен содержать минимум 8 символов, заглавную и строчную буквы, цифру и спецсимвол")
	ErrInvalidTitle       = errors.New("некорректный заголовок задачи")
	ErrInvalidDescription = errors.New("некорректное описание задачи")
	ErrInvalidPriority    = errors.New("недопустимый приоритет задачи")
	ErrInvalidStatus      = errors.New("недопустимый статус задачи")
	ErrInvalidLabels      = errors.New("недопустимые метки задачи")
	ErrInvalidCompleted   = errors.New("поле completed должно быть булевым")
	ErrEmptyComment       = errors.New("комментарий не может быть пустым")
	ErrEmptyReply         = errors.New("ответ не может быть пустым")

	ErrConfigFileReadFailed = errors.New("не удалось прочитать файл конфигурации")
	ErrConfigParseFailed    = errors.New("не удалось разобрать файл конфигурации")
	ErrConfigInvalidFormat  = errors.New("некорректное значение конфигурации")
)
