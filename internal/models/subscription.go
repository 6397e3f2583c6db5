// Package models содержит доменные структуры приложения: подписку, запись
// об оплате и закрытые перечисления (валюта, цикл оплаты, категория),
// а также вспомогательные типы для приёма данных из внешних источников.
package models

import "fmt"

// Currency — валюта подписки. Закрытое множество значений.
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyTRY Currency = "TRY"
)

// CurrencySymbols сопоставляет валюту с её символом для отображения.
var CurrencySymbols = map[Currency]string{
	CurrencyUSD: "$",
	CurrencyEUR: "€",
	CurrencyTRY: "₺",
}

// Currencies перечисляет все поддерживаемые валюты в порядке отображения.
var Currencies = []Currency{CurrencyUSD, CurrencyEUR, CurrencyTRY}

// ParseCurrency проверяет строку на принадлежность закрытому множеству валют.
func ParseCurrency(s string) (Currency, error) {
	switch Currency(s) {
	case CurrencyUSD, CurrencyEUR, CurrencyTRY:
		return Currency(s), nil
	}
	return "", fmt.Errorf("unknown currency: %q", s)
}

// BillingCycle — периодичность списания по подписке.
type BillingCycle string

const (
	CycleWeekly  BillingCycle = "Weekly"
	CycleMonthly BillingCycle = "Monthly"
	CycleYearly  BillingCycle = "Yearly"
)

// ParseBillingCycle проверяет строку на принадлежность закрытому множеству циклов.
func ParseBillingCycle(s string) (BillingCycle, error) {
	switch BillingCycle(s) {
	case CycleWeekly, CycleMonthly, CycleYearly:
		return BillingCycle(s), nil
	}
	return "", fmt.Errorf("unknown billing cycle: %q", s)
}

// Category — категория расходов. Закрытое множество значений.
type Category string

const (
	CategoryEntertainment Category = "Entertainment"
	CategoryUtilities     Category = "Utilities"
	CategorySoftware      Category = "Software"
	CategoryFitness       Category = "Fitness"
	CategoryFood          Category = "Food"
	CategoryOther         Category = "Other"
)

// Categories перечисляет все категории в порядке отображения.
var Categories = []Category{
	CategoryEntertainment,
	CategoryUtilities,
	CategorySoftware,
	CategoryFitness,
	CategoryFood,
	CategoryOther,
}

// ParseCategory проверяет строку на принадлежность закрытому множеству категорий.
// Любое значение вне множества (например, ответ внешнего AI-советника)
// должно отклоняться вызывающей стороной с откатом к CategoryOther.
func ParseCategory(s string) (Category, error) {
	switch Category(s) {
	case CategoryEntertainment, CategoryUtilities, CategorySoftware,
		CategoryFitness, CategoryFood, CategoryOther:
		return Category(s), nil
	}
	return "", fmt.Errorf("unknown category: %q", s)
}

// PaymentRecord — неизменяемая запись о совершённой оплате.
// Название и категория денормализованы: переименование подписки
// задним числом не переписывает историю.
type PaymentRecord struct {
	ID               string   `json:"id"`               // Уникальный идентификатор записи
	Date             string   `json:"date"`             // Погашенная дата списания, YYYY-MM-DD
	Amount           float64  `json:"amount"`           // Сумма на момент оплаты
	Currency         Currency `json:"currency"`         // Валюта на момент оплаты
	SubscriptionName string   `json:"subscriptionName"` // Название подписки на момент оплаты
	Category         Category `json:"category"`         // Категория на момент оплаты
}

// Subscription — основная модель подписки, используемая в бизнес-логике
// и хранилище. Даты хранятся строками в формате YYYY-MM-DD и трактуются
// как календарные даты локального календаря пользователя, без времени.
// PaymentHistory пополняется только добавлением в конец.
type Subscription struct {
	ID              string          `json:"id"`                        // Уникальный идентификатор
	Name            string          `json:"name"`                      // Отображаемое название сервиса
	Price           float64         `json:"price"`                     // Цена за один цикл, >= 0
	Currency        Currency        `json:"currency"`                  // Валюта цены
	Cycle           BillingCycle    `json:"cycle"`                     // Периодичность списания
	NextPaymentDate string          `json:"nextPaymentDate"`           // Ближайшая дата списания, YYYY-MM-DD
	Category        Category        `json:"category"`                  // Категория расходов
	Description     string          `json:"description,omitempty"`     // Произвольное описание
	LogoURL         string          `json:"logoUrl,omitempty"`         // Ссылка на логотип сервиса
	AccountEmail    string          `json:"accountEmail,omitempty"`    // Логин аккаунта сервиса (непрозрачный секрет)
	AccountPassword string          `json:"accountPassword,omitempty"` // Пароль аккаунта сервиса (непрозрачный секрет)
	PaymentHistory  []PaymentRecord `json:"paymentHistory,omitempty"`  // История оплат, только append
}

// DummySubscription используется для приёма данных из CLI-формы или JSON,
// прежде чем конвертировать их в Subscription. Перечисления приходят
// строками, чтобы их можно было валидировать и парсить вручную.
type DummySubscription struct {
	Name            string  `json:"name" validate:"required"`                                  // Название сервиса
	Price           float64 `json:"price" validate:"gte=0"`                                    // Цена (>= 0)
	Currency        string  `json:"currency" validate:"required"`                              // Валюта: USD, EUR или TRY
	Cycle           string  `json:"cycle" validate:"required"`                                 // Цикл: Weekly, Monthly или Yearly
	NextPaymentDate string  `json:"next_payment_date" validate:"required,datetime=2006-01-02"` // Дата в формате YYYY-MM-DD
	Category        string  `json:"category" validate:"required"`                              // Категория из закрытого множества
	Description     string  `json:"description,omitempty"`
	LogoURL         string  `json:"logo_url,omitempty"`
	AccountEmail    string  `json:"account_email,omitempty"`
	AccountPassword string  `json:"account_password,omitempty"`
}

// AnalysisResult — ответ внешнего AI-советника о расходах пользователя.
// Содержимое непрозрачно для движка: числа и тексты отдаются как есть.
type AnalysisResult struct {
	TotalMonthly float64  `json:"totalMonthly"` // Оценка суммарных месячных расходов
	TotalYearly  float64  `json:"totalYearly"`  // Оценка суммарных годовых расходов
	Insight      string   `json:"insight"`      // Краткое наблюдение о привычках
	SavingsTips  []string `json:"savingsTips"`  // Советы по экономии
}
