package services

import (
	"context"
)

// LanguageSlot holds a chat's chosen UI language next to its session slots.
// Logout does not clear it.
const LanguageSlot = "lang"

// GetChatLanguage returns the stored language for the chat. ok is false
// when none was chosen yet.
func GetChatLanguage(ctx context.Context, store SlotStore, chatID int64) (language string, ok bool, err error) {
	slots, err := store.GetSlots(ctx, chatID, LanguageSlot)
	if err != nil {
		return "", false, err
	}
	language = slots[LanguageSlot]
	return language, language != "", nil
}

func SetChatLanguage(ctx context.Context, store SlotStore, chatID int64, language string) error {
	return store.SetSlots(ctx, chatID, map[string]string{LanguageSlot: language})
}
