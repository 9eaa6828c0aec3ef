package domain

import "errors"

var (
	// ErrAuthRequired は利用可能な資格情報がない、またはプロバイダがキーとモデルの組み合わせを拒否したことを示します。
	ErrAuthRequired = errors.New("api key selection required")

	// ErrEmptyResult はプロバイダ呼び出しは成功したが画像が 1 枚も得られなかったことを示します。
	ErrEmptyResult = errors.New("the model did not return any image")

	// ErrEmptyPrompt は編集コンテキストなしで空のプロンプトが送信されたことを示します。
	ErrEmptyPrompt = errors.New("prompt is required")

	// ErrGenerationInProgress は生成が進行中に 2 つ目の生成要求が来たことを示します。
	ErrGenerationInProgress = errors.New("a generation is already in progress")

	// ErrImageNotFound はギャラリーに存在しない画像 ID が指定されたことを示します。
	ErrImageNotFound = errors.New("image not found")

	// ErrNoContextPayload はペイロードを持たない画像を編集コンテキストにしようとしたことを示します。
	ErrNoContextPayload = errors.New("image has no payload for editing")
)

const (
	MessageAuthRequired = "Please select a valid API key from a paid GCP project to use the Pro model."
	MessageEmptyResult  = "The model did not return any image. Try adjusting your prompt."
	MessageEmptyPrompt  = "Enter a prompt to create your artwork."
	MessageFallback     = "An error occurred while generating images."
)

// UserMessage はエラーを UI のエラーバナーに出す文言に変換します。
// 分類済みのエラーは固定文言に、それ以外のプロバイダエラーはそのままの文言になります。
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrAuthRequired):
		return MessageAuthRequired
	case errors.Is(err, ErrEmptyResult):
		return MessageEmptyResult
	case errors.Is(err, ErrEmptyPrompt):
		return MessageEmptyPrompt
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return MessageFallback
}
