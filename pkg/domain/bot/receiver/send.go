package receiver

import (
	"math"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/turfhub/tg_turf_bot/pkg/utils/errs"
)

const sendRetries = 3

// send delivers a message to telegram, retrying transient failures with
// exponential backoff.
func (p *Processor) send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	var (
		msg tgbotapi.Message
		err error
	)
	for attempt := 0; attempt < sendRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(time.Duration(math.Pow(2, float64(attempt))) * time.Second)
		}
		msg, err = p.bot.Send(c)
		if err == nil {
			return msg, nil
		}
		p.logger.Warn().Err(err).Int("attempt", attempt+1).Msg("telegram send failed")
	}
	return msg, errs.New("send message").Wrap(err)
}
