// Package ui implements the interactive recommendation loop with bubbletea's Elm architecture.
//
// One pass through the loop visits these views:
//  1. [MenuView] : pick an engine (Genre, User, Album, Seasonal, Weather)
//  2. [GenreInputView] : enter the seed genre (genre engine only)
//  3. [RunningView] : spinner and engine progress messages
//  4. [ResultView] : the tracks, with a y/n prompt to publish them
//  5. [PlatformView] : Spotify, YouTube or both
//  6. [PublishingView] : publisher progress messages
//  7. [DoneView] : summary or error; enter starts over, q quits
//
// Engines and the publisher run inside a single tea.Cmd each. Their progress arrives on a
// buffered channel fed with non-blocking sends and is drained one message at a time.
// Errors are rendered in [DoneView] and never end the loop.
package ui
