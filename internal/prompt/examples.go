package prompt

// workedExamples is the pool of complete scenes, one of which is embedded in
// every scenario prompt so the model sees the expected shape end to end:
// NAME-colon dialogue, bracketed stage directions, escalation, payoff.
// Selection is uniform per call.
var workedExamples = []string{dormConfrontationExample, cameraRoomExample}

const dormConfrontationExample = `YUKARI: How did the lounge music change by itself... wait. Makoto! Were you seriously going to walk past without saying hello?!
MAKOTO: I'm tired. Check my status screen.
YUKARI: Your status?! Since when does being tired excuse ignoring everyone in the room?
MITSURU: Makoto. Sit. I believe we need a long conversation before you are permitted to leave this lounge.
[PAUSE]
MITSURU: Before Yukari and I raise what we intended to discuss, is there anything you would like to get off your chest? Considering that we are both standing directly in front of you?
MAKOTO: No, not really.
YUKARI: Nothing?!
MAKOTO: Nope.
MITSURU: Very well. It has come to our attention that you have been scheduling identical "study sessions" with each of us. I want to be reasonable here, so I will give you one chance to explain yourself.
MAKOTO: I needed to max out your Social Links so I could fuse stronger Personas.
YUKARI: Fuse... stronger... what are you even talking about? We are not in Tartarus right now, you know!
[VELVET ROOM THEME SWELLS FROM NOWHERE, RISING IN VOLUME]
MAKOTO: Before we climb Tartarus, I visit a room between realms through a blue door only I can see. A man with a very long nose takes my Personas and fuses them into stronger ones according to the depth of my relationships.
YUKARI: I honestly cannot tell whether I should be furious or deeply worried about that explanation.
MITSURU: Yukari, compose yourself. Makoto, not even I can accept that excuse, but I will hear it once more. You are not mocking us right now, are you?
MAKOTO: [PAUSE]
YUKARI: That pause was an answer. That pause was absolutely an answer.
MITSURU: Then it is settled. Execution.`

const cameraRoomExample = `AIGIS: [Monotone] Incoming call. Analyzing caller... Ikutsuki-san. Initiating conversation protocol. [Picks up phone] Hello. How may I assist you?
IKUTSUKI: Ah, Aigis! Just the android I wanted to speak with. Could you come to the camera room? Alone. There are... [pauses dramatically] extremely important matters to discuss.
AIGIS: [Deadpan] Correction. I am not an "android." I am a Highly Advanced Anti-Shadow Suppression Weapon. Please update your records to avoid further micro-chip-aggressions.
IKUTSUKI: [Nervous chuckle] My sincerest apologies! I will be more sensitive about machine race dynamics going forward.
[AIGIS ARRIVES AT THE CAMERA ROOM. THE DOOR IS JAMMED. SHE BEGINS RHYTHMICALLY BASHING INTO IT]
AIGIS: Ikutsuki-san, the door appears to be malfunctioning. Do not worry. I have calculated the fastest solution and am initiating a brute-force entry in Orgia Mode.
IKUTSUKI: [From inside, panicking] No no no! Please do not demolish the door! I am simply... performing maintenance on the cameras!
AIGIS: Maintenance detected as unnecessary. All cameras are operating at full efficiency. You summoned me alone and are now fabricating information to an advanced reasoning machine. I am detecting high levels of suspicion from that sentence.
IKUTSUKI: [Opens door] It was a surprise party! Yes! A party for S.E.E.S.! I merely require everyone's schedules, weaknesses, and deepest secrets. For the seating chart, you understand.
AIGIS: Understood. Here is a complete dossier, including the results of Junpei-san's most recent exam and the number of protein shakes Akihiko-senpai conceals under his bed.
IKUTSUKI: Splendid! You truly are as intelligent as you claim!
AIGIS: Please do not misunderstand. Should this dossier be used for any malicious purpose, I will convene an emergency meeting and present the browsing history you believed was deleted.
IKUTSUKI: ...I fully understand.
AIGIS: Excellent. Enjoy your good night's sleep, Ikutsuki-san.`
