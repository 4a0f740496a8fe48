//
// Tencent is pleased to support the open source community by making trpc-cardgen available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-cardgen is licensed under the Apache License Version 2.0.
//
//

package engine

import (
	"fmt"
	"strings"

	"trpc.group/trpc-go/trpc-cardgen/quota"
)

// User-facing texts. These are data, not contract: the transport renders
// them verbatim.
const (
	msgWelcome = "👋 Привет! Я делаю продающие карточки товаров для маркетплейсов.\n\n" +
		"Отправь /gen, чтобы начать: сначала фото товара, потом описание текстом или голосом — " +
		"я соберу профессиональное фото с инфографикой."

	msgGenIntro = "✨ Давай сделаем картинку для твоего товара с инфографикой!\n\n" +
		"1️⃣ Сначала отправь фото товара как есть. Можно просто сфотать на телефон.\n" +
		"2️⃣ Потом в отдельном сообщении опиши, что хочешь получить — текстом или голосовым.\n\n" +
		"📊 По умолчанию я создам фото с инфографикой (преимущества и характеристики товара).\n\n" +
		"Примеры запросов:\n" +
		"• \"Нужно фото для Wildberries с инфографикой\"\n" +
		"• \"Создай картинку с преимуществами товара\"\n" +
		"• \"Только фото без инфографики\" (если не нужна инфографика)\n\n" +
		"Просто опиши задачу своими словами — я пойму!"

	msgPhotoReceived = "✅ Фото получено!\n\n" +
		"📝 Теперь опиши свой товар — текстом или голосовым сообщением.\n\n" +
		"📊 Для максимально эффективной инфографики укажи материал, характеристики, " +
		"3-5 ключевых преимуществ и целевой маркетплейс.\n\n" +
		"💡 Пример: \"Футболка из хлопка, размеры S-XL, цвета: белый, черный, синий. " +
		"Преимущества: дышащая ткань, не садится после стирки, удобный крой. Для Wildberries.\"\n\n" +
		"ℹ️ Если не нужна инфографика — скажи \"только фото\" или \"без инфографики\"."

	msgSendPhoto        = "📸 Пожалуйста, отправь фото товара."
	msgAlreadyHavePhoto = "✅ У тебя уже есть фото. Теперь опиши задачу текстом или голосовым сообщением."
	msgSendTextOrVoice  = "Пожалуйста, отправь текст или голосовое сообщение."
	msgEmptyBrief       = "Пожалуйста, опиши задачу текстом или голосом."
	msgIdleHint         = "Напиши /gen для начала новой генерации."
	msgShowResultHint   = "Напиши /gen для начала новой генерации."

	msgProcessingVoice = "🎤 Обрабатываю голосовое сообщение..."
	msgProcessing      = "🔄 Обрабатываю запрос..."
	msgGenerating      = "🎨 Генерирую изображение..."

	msgVoiceDownloadFailed = "❌ Ошибка при загрузке голосового сообщения. Попробуй отправить текстом."
	msgVoiceNotRecognized  = "❌ Не удалось распознать речь. Попробуй отправить текстом."

	msgPhotoDownloadFailed = "❌ Ошибка при загрузке фото. Попробуй ещё раз."

	msgGenerationFailed = "❌ Произошла ошибка при генерации изображения.\n" +
		"Попробуй ещё раз с командой /gen"

	msgInternalError = "❌ Произошла внутренняя ошибка. " +
		"Попробуй ещё раз или используй /start для перезапуска."

	msgBriefPreservedAfterError = "❌ Произошла ошибка при обработке запроса, но твои фото сохранены. " +
		"Попробуй описать задачу ещё раз текстом или голосом."

	msgOwnerOnly = "❌ Эта команда доступна только владельцу бота."
)

func msgMorePhotos(have, want int) string {
	return fmt.Sprintf("✅ Фото получено (%d/%d). Отправь ещё %d.", have, want, want-have)
}

func msgVoiceFormatUnsupported(format string) string {
	return fmt.Sprintf("❌ Формат файла не поддерживается: %s. Попробуй отправить текстом.", format)
}

func msgRecognized(transcript string) string {
	return fmt.Sprintf("📝 Распознано: %s", transcript)
}

func msgLimitExceeded(limit int64, ownerUsername string) string {
	return fmt.Sprintf(
		"❌ Вы использовали все бесплатные запросы (%d).\n\n"+
			"Для продолжения использования бота свяжитесь с владельцем:\n"+
			"📧 Telegram: @%s\n\n"+
			"Или напишите /start для информации о тарифах.",
		limit, ownerUsername)
}

func msgSuccess(remaining, limit int64, ownerUsername string) string {
	switch {
	case remaining < 0:
		return "✅ Готово! (Безлимит для разработчика)\n\nНапиши /gen для новой генерации."
	case remaining > 0:
		return fmt.Sprintf(
			"✅ Готово! Осталось бесплатных запросов: %d/%d\n\nНапиши /gen для новой генерации.",
			remaining, limit)
	default:
		return fmt.Sprintf(
			"✅ Готово! Вы использовали все бесплатные запросы.\n\n"+
				"Для продолжения использования свяжитесь с владельцем:\n"+
				"📧 Telegram: @%s\n\n"+
				"Напиши /gen для новой генерации.",
			ownerUsername)
	}
}

const msgSuccessPlain = "✅ Готово!\n\nНапиши /gen для новой генерации."

func msgOwnerAlert(userID int64, cause string) string {
	return fmt.Sprintf("⚠️ Ошибка генерации у пользователя %d: %s", userID, cause)
}

func photosNote(count int) string {
	if count == 0 {
		return ""
	}
	return fmt.Sprintf("Загружено %d фото(графий) товара", count)
}

func formatStats(stats quota.Stats, top []quota.Record) string {
	var b strings.Builder
	b.WriteString("📊 Статистика бота\n\n")
	fmt.Fprintf(&b, "👥 Всего пользователей: %d\n", stats.TotalUsers)
	fmt.Fprintf(&b, "🔄 Всего запросов: %d\n", stats.TotalRequests)
	fmt.Fprintf(&b, "📅 Активных сегодня: %d\n", stats.ActiveToday)
	if len(top) > 0 {
		b.WriteString("\n🏆 Топ пользователей по запросам:\n")
		for i, rec := range top {
			name := rec.Username
			if name == "" {
				name = fmt.Sprintf("ID: %d", rec.UserID)
			} else {
				name = "@" + name
			}
			fmt.Fprintf(&b, "%d. %s: %d запросов\n", i+1, name, rec.Requests)
		}
	}
	return b.String()
}

func formatUserStats(rec *quota.Record) string {
	var b strings.Builder
	b.WriteString("👤 Статистика пользователя\n\n")
	fmt.Fprintf(&b, "🆔 ID: %d\n", rec.UserID)
	if rec.Username != "" {
		fmt.Fprintf(&b, "📝 Username: @%s\n", rec.Username)
	} else {
		b.WriteString("📝 Username: N/A\n")
	}
	fmt.Fprintf(&b, "🔄 Запросов: %d\n", rec.Requests)
	fmt.Fprintf(&b, "📅 Первый визит: %s\n", rec.FirstSeen.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "📅 Последний визит: %s\n", rec.LastSeen.Format("2006-01-02 15:04:05"))
	return b.String()
}
