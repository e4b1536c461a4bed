package junkshot

// Sound names a feedback cue.
type Sound string

const (
	SoundGunshot    Sound = "gunshot"
	SoundHit        Sound = "hit"
	SoundMiss       Sound = "miss"
	SoundRoundClear Sound = "round-clear"
)

// Feedback receives audio and visual cues. Implementations must not block.
type Feedback interface {
	Play(sound Sound)
	StartMusic()
	StopMusic()
}

// NopFeedback discards every cue.
type NopFeedback struct{}

func (NopFeedback) Play(Sound)  {}
func (NopFeedback) StartMusic() {}
func (NopFeedback) StopMusic()  {}
